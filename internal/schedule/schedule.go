package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Spec is a parsed schedule: either a fixed interval or a 5-field cron
// expression evaluated in loc.
type Spec struct {
	expr     string
	sched    cron.Schedule
	interval time.Duration // 0 when cron-based
	loc      *time.Location
}

var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

var unitWords = strings.NewReplacer(
	" seconds", "s", " second", "s",
	" minutes", "m", " minute", "m",
	" hours", "h", " hour", "h",
)

// Parse accepts either a fixed interval ("30m", "every 30m", "@every 30m")
// or a standard cron expression ("0 4 * * MON"). Cron fields are evaluated
// in loc; nil means the process's local timezone.
func Parse(expr string, loc *time.Location) (*Spec, error) {
	if loc == nil {
		loc = time.Local
	}
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("schedule is empty")
	}

	// interval forms first; "every 30m" and "every 30 minutes" are the
	// documented spellings, a bare duration works too
	ivExpr := strings.TrimPrefix(expr, "every ")
	ivExpr = unitWords.Replace(strings.TrimSpace(ivExpr))
	if d, err := time.ParseDuration(ivExpr); err == nil {
		if d < time.Second {
			return nil, fmt.Errorf("schedule interval %s is below 1s", d)
		}
		return &Spec{expr: expr, sched: cron.Every(d), interval: d, loc: loc}, nil
	}

	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse cron %q: %w", expr, err)
	}
	s := &Spec{expr: expr, sched: sched, loc: loc}

	// a spec that never fires again is a config error, not something to
	// discover at 4am
	if s.Next(time.Now()).IsZero() {
		return nil, fmt.Errorf("cron %q yields no future run time", expr)
	}
	return s, nil
}

// Next returns the earliest instant strictly after now at which a run is
// due, or the zero time if the schedule never fires again.
func (s *Spec) Next(now time.Time) time.Time {
	t := now.In(s.loc)
	next := s.sched.Next(t)

	// Guard against DST/clock-skew anomalies handing back a non-future
	// instant: step past now instead of firing in a tight loop.
	for i := 0; i < 4 && !next.IsZero() && !next.After(now); i++ {
		t = t.Add(time.Second)
		next = s.sched.Next(t)
	}
	if !next.IsZero() && !next.After(now) {
		return time.Time{}
	}
	return next
}

// FixedInterval reports the interval and true when the spec is
// interval-based rather than cron-based.
func (s *Spec) FixedInterval() (time.Duration, bool) {
	return s.interval, s.interval > 0
}

// Location returns the timezone the spec is evaluated in.
func (s *Spec) Location() *time.Location { return s.loc }

func (s *Spec) String() string { return s.expr }
