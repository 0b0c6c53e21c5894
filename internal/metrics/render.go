package metrics

import (
	"fmt"
	"io"

	"github.com/tastythames/router-keepalive/internal/routerclient"
	"github.com/tastythames/router-keepalive/internal/status"
)

// Renderer writes the status snapshot in Prometheus text exposition format.
// Hand-rolled on purpose; a handful of gauges does not justify a client
// library dependency.
type Renderer struct {
	Store *status.Store
}

func NewRenderer(s *status.Store) *Renderer {
	return &Renderer{Store: s}
}

func (r *Renderer) Write(w io.Writer) {
	last, c := r.Store.Snapshot()

	// ---------------------------------------------------
	// Process-level metrics
	// ---------------------------------------------------
	fmt.Fprintf(w, "# HELP %s 1 if the keepalive process is running.\n", MetricUp)
	fmt.Fprintf(w, "# TYPE %s gauge\n", MetricUp)
	fmt.Fprintf(w, "%s 1\n", MetricUp)

	// ---------------------------------------------------
	// Counters since start
	// ---------------------------------------------------
	counters := []struct {
		name string
		help string
		val  uint64
	}{
		{MetricRunsTotal, "Ticks executed.", c.Runs},
		{MetricSuccessTotal, "Ticks that ended in a successful login.", c.Successes},
		{MetricRejectedTotal, "Ticks rejected by the device (bad credential or session state).", c.Rejected},
		{MetricUnexpectedTotal, "Ticks that got a response no marker recognized.", c.Unexpected},
		{MetricExhaustedTotal, "Ticks still failing transiently after all retries.", c.Exhausted},
		{MetricRetriesTotal, "Individual retries across all ticks.", c.Retries},
		{MetricFollowUpFailed, "Post-login follow-up actions that failed.", c.FollowUpFailures},
	}
	for _, m := range counters {
		fmt.Fprintf(w, "# HELP %s %s\n", m.name, m.help)
		fmt.Fprintf(w, "# TYPE %s counter\n", m.name)
		fmt.Fprintf(w, "%s %d\n", m.name, m.val)
	}

	// ---------------------------------------------------
	// Last tick (absent until the first one runs)
	// ---------------------------------------------------
	if last == nil {
		return
	}

	success := 0
	if last.Outcome.Kind == routerclient.KindSuccess {
		success = 1
	}

	fmt.Fprintf(w, "# HELP %s 1 if the last tick's login succeeded.\n", MetricLastRunSuccess)
	fmt.Fprintf(w, "# TYPE %s gauge\n", MetricLastRunSuccess)
	fmt.Fprintf(w, "%s{outcome=%q} %d\n", MetricLastRunSuccess, last.Outcome.Kind, success)

	fmt.Fprintf(w, "# HELP %s Unix timestamp of the last tick's start.\n", MetricLastRunTs)
	fmt.Fprintf(w, "# TYPE %s gauge\n", MetricLastRunTs)
	fmt.Fprintf(w, "%s %d\n", MetricLastRunTs, last.StartedAt.Unix())

	fmt.Fprintf(w, "# HELP %s Wall time of the last tick including retries.\n", MetricLastRunDuration)
	fmt.Fprintf(w, "# TYPE %s gauge\n", MetricLastRunDuration)
	fmt.Fprintf(w, "%s %.3f\n", MetricLastRunDuration, last.Duration.Seconds())

	fmt.Fprintf(w, "# HELP %s Retries spent by the last tick.\n", MetricLastRunRetries)
	fmt.Fprintf(w, "# TYPE %s gauge\n", MetricLastRunRetries)
	fmt.Fprintf(w, "%s %d\n", MetricLastRunRetries, last.Retries)
}
