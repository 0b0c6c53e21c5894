package status

import (
	"sync"
	"time"

	"github.com/tastythames/router-keepalive/internal/routerclient"
)

// Record is the result of one tick. Ephemeral: the store keeps only the most
// recent one, there is no history.
type Record struct {
	ID          string
	ScheduledAt time.Time
	StartedAt   time.Time
	Duration    time.Duration
	Outcome     routerclient.Outcome
	Retries     int
}

type Counters struct {
	Runs             uint64
	Successes        uint64
	Rejected         uint64
	Unexpected       uint64
	Exhausted        uint64 // ticks that ended still transient after retries
	Retries          uint64
	FollowUpFailures uint64
}

// Store is the in-memory snapshot used by the /metrics exposition.
type Store struct {
	mu       sync.RWMutex
	last     *Record
	counters Counters
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Observe(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = &r
	s.counters.Runs++
	s.counters.Retries += uint64(r.Retries)
	switch r.Outcome.Kind {
	case routerclient.KindSuccess:
		s.counters.Successes++
	case routerclient.KindAuthRejected:
		s.counters.Rejected++
	case routerclient.KindUnexpected:
		s.counters.Unexpected++
	case routerclient.KindTransient:
		s.counters.Exhausted++
	}
}

func (s *Store) FollowUpFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.FollowUpFailures++
}

// Snapshot returns a copy of the last record (nil before the first tick) and
// the counters.
func (s *Store) Snapshot() (*Record, Counters) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.last == nil {
		return nil, s.counters
	}
	r := *s.last
	return &r, s.counters
}
