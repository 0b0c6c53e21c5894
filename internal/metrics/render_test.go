package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tastythames/router-keepalive/internal/routerclient"
	"github.com/tastythames/router-keepalive/internal/status"
)

func render(s *status.Store) string {
	var b strings.Builder
	NewRenderer(s).Write(&b)
	return b.String()
}

func TestRenderBeforeFirstTick(t *testing.T) {
	out := render(status.NewStore())

	require.Contains(t, out, MetricUp+" 1\n")
	require.Contains(t, out, MetricRunsTotal+" 0\n")
	require.NotContains(t, out, MetricLastRunSuccess)
}

func TestRenderAfterSuccess(t *testing.T) {
	s := status.NewStore()
	s.Observe(status.Record{
		ID:        "a",
		StartedAt: time.Unix(1700000000, 0),
		Duration:  1500 * time.Millisecond,
		Outcome:   routerclient.Success(),
		Retries:   2,
	})

	out := render(s)
	require.Contains(t, out, MetricRunsTotal+" 1\n")
	require.Contains(t, out, MetricSuccessTotal+" 1\n")
	require.Contains(t, out, MetricRetriesTotal+" 2\n")
	require.Contains(t, out, MetricLastRunSuccess+`{outcome="success"} 1`)
	require.Contains(t, out, MetricLastRunTs+" 1700000000\n")
	require.Contains(t, out, MetricLastRunDuration+" 1.500\n")
	require.Contains(t, out, MetricLastRunRetries+" 2\n")
}

func TestRenderAfterExhaustedTick(t *testing.T) {
	s := status.NewStore()
	s.Observe(status.Record{
		ID:      "a",
		Outcome: routerclient.Transient(errors.New("refused")),
		Retries: 3,
	})

	out := render(s)
	require.Contains(t, out, MetricExhaustedTotal+" 1\n")
	require.Contains(t, out, MetricLastRunSuccess+`{outcome="transient_error"} 0`)
}
