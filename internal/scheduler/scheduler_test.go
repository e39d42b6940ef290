// ABOUTME: Tests for running two gardeners concurrently over one grid
// ABOUTME: Covers full coverage, obstacles, frames and cancellation

package scheduler

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/gardeners/internal/garden"
	"github.com/2389/gardeners/internal/gardener"
)

func newPair(t *testing.T, grid *garden.Grid, stepA, stepB time.Duration) (*gardener.Gardener, *gardener.Gardener) {
	t.Helper()
	routeA, routeB := gardener.DefaultRoutes(grid.Size())

	a, err := gardener.New("first", grid, routeA, stepA)
	require.NoError(t, err)
	b, err := gardener.New("second", grid, routeB, stepB)
	require.NoError(t, err)
	return a, b
}

func TestNew_Errors(t *testing.T) {
	grid, err := garden.NewGrid(4)
	require.NoError(t, err)
	a, _ := newPair(t, grid, time.Millisecond, time.Millisecond)

	_, err = New(grid, a, nil)
	assert.ErrorIs(t, err, ErrMissingGardener)

	_, err = New(grid, a, a)
	assert.ErrorIs(t, err, ErrSameGardener)
}

func TestScheduler_Run_FourByFour(t *testing.T) {
	grid, err := garden.NewGrid(4)
	require.NoError(t, err)

	routeA := gardener.Route{
		Start: garden.Position{X: 0, Y: 3}, End: garden.Position{X: 0, Y: 0},
		Primary: garden.Right, Turn: garden.Down, Alternate: garden.Left,
	}
	routeB := gardener.Route{
		Start: garden.Position{X: 3, Y: 0}, End: garden.Position{X: 0, Y: 0},
		Primary: garden.Up, Turn: garden.Left, Alternate: garden.Down,
	}
	a, err := gardener.New("a", grid, routeA, time.Millisecond)
	require.NoError(t, err)
	b, err := gardener.New("b", grid, routeB, 2*time.Millisecond)
	require.NoError(t, err)

	s, err := New(grid, a, b)
	require.NoError(t, err)
	require.NoError(t, s.Run(context.Background()))

	assert.True(t, s.Done())
	snap := grid.Snapshot()
	assert.Equal(t, 16, snap.Count(garden.Tended))

	// Every square was tended by exactly one of them.
	total := a.Status().Tended + b.Status().Tended
	assert.Equal(t, 16, total)
}

func TestScheduler_Run_SettlesWithObstacles(t *testing.T) {
	for seed := uint64(1); seed <= 3; seed++ {
		grid, err := garden.NewGrid(10)
		require.NoError(t, err)
		layout, err := garden.RandomLayout(rand.New(rand.NewPCG(seed, seed)), 10, 10, 30)
		require.NoError(t, err)
		require.NoError(t, grid.Apply(layout))

		a, b := newPair(t, grid, 200*time.Microsecond, 300*time.Microsecond)
		s, err := New(grid, a, b)
		require.NoError(t, err)
		require.NoError(t, s.Run(context.Background()))

		snap := grid.Snapshot()
		assert.True(t, snap.Settled(), "seed %d", seed)
		assert.Equal(t, len(layout), snap.Count(garden.Rock)+snap.Count(garden.Pond))
		assert.Equal(t, 100-len(layout), snap.Count(garden.Tended))
		assert.Equal(t, 100-len(layout), a.Status().Tended+b.Status().Tended)
	}
}

func TestScheduler_Run_PublishesFrames(t *testing.T) {
	grid, err := garden.NewGrid(4)
	require.NoError(t, err)
	a, b := newPair(t, grid, time.Millisecond, time.Millisecond)

	bc := NewBroadcaster(nil)
	defer bc.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	frames, _ := bc.Subscribe(ctx)

	s, err := New(grid, a, b, WithBroadcaster(bc), WithInterval(2*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, s.Run(ctx))

	var got []Frame
	for len(frames) > 0 {
		got = append(got, <-frames)
	}
	require.NotEmpty(t, got)

	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i].Seq, got[i-1].Seq)
	}
	for _, f := range got {
		assert.Len(t, f.Gardeners, 2)
		assert.Equal(t, 4, f.Grid.Size)
	}

	final := s.Frame()
	assert.True(t, final.Done)
	assert.True(t, final.Grid.Settled())
}

func TestScheduler_Run_Cancelled(t *testing.T) {
	grid, err := garden.NewGrid(4)
	require.NoError(t, err)
	a, b := newPair(t, grid, time.Hour, time.Hour)

	s, err := New(grid, a, b)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err = s.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, s.Done())
}

func TestScheduler_DefaultInterval(t *testing.T) {
	grid, err := garden.NewGrid(4)
	require.NoError(t, err)
	a, b := newPair(t, grid, 5*time.Millisecond, 3*time.Millisecond)

	s, err := New(grid, a, b)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Millisecond, s.interval)
}
