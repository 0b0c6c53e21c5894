// Package retry bounds re-attempts of a single tick's login. Only transient
// (network-class) outcomes are retried; a rejected credential or a protocol
// mismatch stays final for the tick.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"

	"github.com/tastythames/router-keepalive/internal/routerclient"
)

const defaultMargin = 2 * time.Second

// AttemptFunc performs one attempt. It must not retry internally.
type AttemptFunc func(ctx context.Context) routerclient.Outcome

type Policy struct {
	MaxRetries int
	Base       time.Duration // first backoff delay; doubles per retry
	// Margin is the safety gap kept before deadline; a backoff wait that
	// would land inside it abandons the remaining retries. Defaults to 2s.
	Margin time.Duration
}

// Run invokes fn, retrying transient outcomes with exponential backoff until
// MaxRetries is spent, ctx is cancelled, or the next wait would run past
// deadline minus Margin (zero deadline means unbounded). Returns the last
// outcome observed and the retry count.
func (p Policy) Run(ctx context.Context, deadline time.Time, fn AttemptFunc) (routerclient.Outcome, int) {
	margin := p.Margin
	if margin <= 0 {
		margin = defaultMargin
	}

	base := p.Base
	if base <= 0 {
		base = backoff.DefaultInitialInterval
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = base
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxInterval = 5 * time.Minute
	bo.MaxElapsedTime = 0 // the deadline check below is the real bound
	bo.Reset()

	out := fn(ctx)
	retries := 0
	for out.Retryable() && retries < p.MaxRetries {
		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			break
		}
		if !deadline.IsZero() && time.Now().Add(wait).After(deadline.Add(-margin)) {
			log.Warn("abandoning retries before next tick",
				"retries", retries, "wait", wait, "deadline", deadline)
			break
		}

		log.Debug("retrying after transient failure",
			"retry", retries+1, "max", p.MaxRetries, "wait", wait, "cause", out.Err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return out, retries
		case <-timer.C:
		}

		retries++
		out = fn(ctx)
	}
	return out, retries
}
