package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Tests pin a fixed zone and fixed "now" values; the host clock and host
// timezone must not leak into any assertion.
var cst = time.FixedZone("CST", 8*60*60)

func TestParseCronNext(t *testing.T) {
	spec, err := Parse("0 4 * * MON", cst)
	require.NoError(t, err)

	// Wednesday noon -> next Monday 04:00 in the pinned zone.
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, cst)
	next := spec.Next(now)
	want := time.Date(2025, 3, 10, 4, 0, 0, 0, cst)
	require.True(t, next.Equal(want), "got %v, want %v", next, want)

	_, fixed := spec.FixedInterval()
	require.False(t, fixed)
}

func TestNextStrictlyAfterNow(t *testing.T) {
	spec, err := Parse("0 4 * * MON", cst)
	require.NoError(t, err)

	// now exactly on a firing instant must yield the following one
	onBoundary := time.Date(2025, 3, 10, 4, 0, 0, 0, cst)
	next := spec.Next(onBoundary)
	require.True(t, next.After(onBoundary))
	want := time.Date(2025, 3, 17, 4, 0, 0, 0, cst)
	require.True(t, next.Equal(want), "got %v, want %v", next, want)
}

func TestNextSequenceIncreasing(t *testing.T) {
	for _, expr := range []string{"0 4 * * MON", "*/15 * * * *", "30m"} {
		spec, err := Parse(expr, cst)
		require.NoError(t, err, expr)

		cur := time.Date(2025, 3, 5, 12, 0, 0, 0, cst)
		for i := 0; i < 10; i++ {
			next := spec.Next(cur)
			require.True(t, next.After(cur), "%s: step %d: %v not after %v", expr, i, next, cur)
			cur = next
		}
	}
}

func TestParseInterval(t *testing.T) {
	spec, err := Parse("30m", cst)
	require.NoError(t, err)

	iv, fixed := spec.FixedInterval()
	require.True(t, fixed)
	require.Equal(t, 30*time.Minute, iv)

	now := time.Date(2025, 3, 5, 12, 0, 0, 0, cst)
	next := spec.Next(now)
	require.True(t, next.Equal(now.Add(30*time.Minute)), "got %v", next)
}

func TestParseIntervalSpellings(t *testing.T) {
	for _, expr := range []string{"every 15m", "15m", "@every 15m", "every 15 minutes", "every 1 minute"} {
		spec, err := Parse(expr, cst)
		require.NoError(t, err, expr)

		now := time.Date(2025, 3, 5, 12, 0, 0, 0, cst)
		require.True(t, spec.Next(now).After(now), expr)
	}
}

func TestParseErrors(t *testing.T) {
	for _, expr := range []string{"", "whenever", "0 4 * *", "-5m", "100ms"} {
		_, err := Parse(expr, cst)
		require.Error(t, err, "expr %q", expr)
	}
}

func TestParseNilLocationUsesLocal(t *testing.T) {
	spec, err := Parse("5m", nil)
	require.NoError(t, err)
	require.Equal(t, time.Local, spec.Location())
}
