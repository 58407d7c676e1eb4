package benders

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBoundsAreMonotone(t *testing.T) {
	b := newBoundTracker()
	require.True(t, math.IsInf(b.lower, -1))
	require.True(t, math.IsInf(b.upper, 1))

	b.observeLower(5)
	b.observeLower(3) // regression is clamped
	require.Equal(t, 5.0, b.lower)

	b.observeUpper(20)
	b.observeUpper(30) // regression is clamped
	require.Equal(t, 20.0, b.upper)

	b.observeLower(20)
	require.Equal(t, 0.0, b.gap())
	require.True(t, b.converged(1e-6))
}

func TestGapIsInfiniteWithoutIncumbent(t *testing.T) {
	b := newBoundTracker()
	b.observeLower(10)

	require.True(t, math.IsInf(b.gap(), 1))
	require.False(t, b.converged(1e-6))
}

func TestRecordSnapshotsBounds(t *testing.T) {
	b := newBoundTracker()
	b.observeLower(9)
	b.record(0, 2, 3, 5*time.Millisecond, nil)
	b.observeLower(14)
	b.observeUpper(14)
	b.record(1, 0, 1, time.Millisecond, []string{"note"})

	require.Len(t, b.history, 2)
	require.Equal(t, 9.0, b.history[0].Lower)
	require.Equal(t, 2, b.history[0].Cuts)
	require.Equal(t, 3, b.history[0].Evaluated)
	require.Equal(t, 14.0, b.history[1].Lower)
	require.Equal(t, 14.0, b.history[1].Upper)
	require.Equal(t, []string{"note"}, b.history[1].Warnings)
}
