package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tastythames/router-keepalive/internal/routerclient"
)

var errNet = errors.New("connect: connection refused")

func scripted(outcomes ...routerclient.Outcome) (AttemptFunc, *int) {
	calls := 0
	return func(context.Context) routerclient.Outcome {
		i := calls
		calls++
		if i >= len(outcomes) {
			i = len(outcomes) - 1
		}
		return outcomes[i]
	}, &calls
}

func TestTransientRetriesExactlyMax(t *testing.T) {
	fn, calls := scripted(routerclient.Transient(errNet))
	p := Policy{MaxRetries: 3, Base: time.Millisecond}

	out, retries := p.Run(context.Background(), time.Time{}, fn)

	require.Equal(t, routerclient.KindTransient, out.Kind)
	require.Equal(t, 3, retries)
	require.Equal(t, 4, *calls)
}

func TestAuthRejectedIsTerminal(t *testing.T) {
	fn, calls := scripted(routerclient.AuthRejected("bad password"))
	p := Policy{MaxRetries: 3, Base: time.Millisecond}

	out, retries := p.Run(context.Background(), time.Time{}, fn)

	require.Equal(t, routerclient.KindAuthRejected, out.Kind)
	require.Equal(t, 0, retries)
	require.Equal(t, 1, *calls)
}

func TestUnexpectedIsTerminal(t *testing.T) {
	fn, calls := scripted(routerclient.Unexpected("status 500"))
	p := Policy{MaxRetries: 3, Base: time.Millisecond}

	out, retries := p.Run(context.Background(), time.Time{}, fn)

	require.Equal(t, routerclient.KindUnexpected, out.Kind)
	require.Equal(t, 0, retries)
	require.Equal(t, 1, *calls)
}

func TestRecoversAfterTransients(t *testing.T) {
	fn, calls := scripted(
		routerclient.Transient(errNet),
		routerclient.Transient(errNet),
		routerclient.Success(),
	)
	p := Policy{MaxRetries: 3, Base: time.Millisecond}

	out, retries := p.Run(context.Background(), time.Time{}, fn)

	require.Equal(t, routerclient.KindSuccess, out.Kind)
	require.Equal(t, 2, retries)
	require.Equal(t, 3, *calls)
}

func TestDeadlineAbandonsRetries(t *testing.T) {
	fn, calls := scripted(routerclient.Transient(errNet))
	p := Policy{MaxRetries: 5, Base: 50 * time.Millisecond, Margin: 10 * time.Millisecond}

	// first backoff wait would already cross the deadline's margin
	deadline := time.Now().Add(40 * time.Millisecond)
	out, retries := p.Run(context.Background(), deadline, fn)

	require.Equal(t, routerclient.KindTransient, out.Kind)
	require.Equal(t, 0, retries)
	require.Equal(t, 1, *calls)
}

func TestCancelInterruptsBackoff(t *testing.T) {
	fn, calls := scripted(routerclient.Transient(errNet))
	p := Policy{MaxRetries: 3, Base: 500 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	out, retries := p.Run(ctx, time.Time{}, fn)

	require.Less(t, time.Since(start), 400*time.Millisecond)
	require.Equal(t, routerclient.KindTransient, out.Kind)
	require.Equal(t, 0, retries)
	require.Equal(t, 1, *calls)
}

func TestZeroMaxRetriesSingleAttempt(t *testing.T) {
	fn, calls := scripted(routerclient.Transient(errNet))
	p := Policy{MaxRetries: 0, Base: time.Millisecond}

	_, retries := p.Run(context.Background(), time.Time{}, fn)

	require.Equal(t, 0, retries)
	require.Equal(t, 1, *calls)
}
