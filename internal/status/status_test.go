package status

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tastythames/router-keepalive/internal/routerclient"
)

func TestObserveCounts(t *testing.T) {
	s := NewStore()

	s.Observe(Record{ID: "a", Outcome: routerclient.Success(), Retries: 2})
	s.Observe(Record{ID: "b", Outcome: routerclient.AuthRejected("bad password")})
	s.Observe(Record{ID: "c", Outcome: routerclient.Unexpected("status 500")})
	s.Observe(Record{ID: "d", Outcome: routerclient.Transient(errors.New("refused")), Retries: 3})

	last, c := s.Snapshot()
	require.Equal(t, "d", last.ID)
	require.Equal(t, uint64(4), c.Runs)
	require.Equal(t, uint64(1), c.Successes)
	require.Equal(t, uint64(1), c.Rejected)
	require.Equal(t, uint64(1), c.Unexpected)
	require.Equal(t, uint64(1), c.Exhausted)
	require.Equal(t, uint64(5), c.Retries)
}

func TestSnapshotBeforeFirstTick(t *testing.T) {
	last, c := NewStore().Snapshot()
	require.Nil(t, last)
	require.Equal(t, uint64(0), c.Runs)
}

func TestSnapshotReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Observe(Record{ID: "a", StartedAt: time.Unix(100, 0), Outcome: routerclient.Success()})

	last, _ := s.Snapshot()
	last.ID = "mutated"

	again, _ := s.Snapshot()
	require.Equal(t, "a", again.ID)
}

func TestFollowUpFailed(t *testing.T) {
	s := NewStore()
	s.FollowUpFailed()
	s.FollowUpFailed()

	_, c := s.Snapshot()
	require.Equal(t, uint64(2), c.FollowUpFailures)
}
