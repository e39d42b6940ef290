// ABOUTME: Tests for the shared garden grid
// ABOUTME: Covers claim exclusivity, state transitions, waits, obstacles and snapshots

package garden

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGrid(t *testing.T, size int) *Grid {
	t.Helper()
	g, err := NewGrid(size)
	require.NoError(t, err)
	return g
}

func TestNewGrid_InvalidSize(t *testing.T) {
	for _, size := range []int{-1, 0, 1, MaxSize + 1} {
		_, err := NewGrid(size)
		assert.ErrorIs(t, err, ErrInvalidSize, "size %d", size)
	}
}

func TestNewGrid_AllUntended(t *testing.T) {
	g := newTestGrid(t, 4)

	snap := g.Snapshot()
	assert.Equal(t, 4, snap.Size)
	assert.Equal(t, 16, snap.Count(Untended))
	assert.False(t, snap.Settled())
}

func TestGrid_TryClaim_Transitions(t *testing.T) {
	g := newTestGrid(t, 3)
	pos := Position{X: 1, Y: 2}

	require.True(t, g.TryClaim(pos))
	assert.Equal(t, BeingTended, g.Get(pos))

	// A claimed cell cannot be claimed again.
	assert.False(t, g.TryClaim(pos))

	g.FinishTending(pos)
	assert.Equal(t, Tended, g.Get(pos))

	// Nor can a tended one.
	assert.False(t, g.TryClaim(pos))
	assert.Equal(t, Tended, g.Get(pos))
}

func TestGrid_TryClaim_ExactlyOneWinner(t *testing.T) {
	for round := 0; round < 200; round++ {
		g := newTestGrid(t, 2)
		pos := Position{X: 0, Y: 0}

		var wins atomic.Int32
		var wg sync.WaitGroup
		start := make(chan struct{})
		wg.Add(2)
		for i := 0; i < 2; i++ {
			go func() {
				defer wg.Done()
				<-start
				if g.TryClaim(pos) {
					wins.Add(1)
				}
			}()
		}
		close(start)
		wg.Wait()

		require.Equal(t, int32(1), wins.Load(), "round %d", round)
		assert.Equal(t, BeingTended, g.Get(pos))
	}
}

func TestGrid_TryClaim_Obstacles(t *testing.T) {
	g := newTestGrid(t, 4)
	rock := Position{X: 2, Y: 2}
	pond := Position{X: 0, Y: 3}
	require.NoError(t, g.PlaceObstacle(rock, Rock))
	require.NoError(t, g.PlaceObstacle(pond, Pond))

	for i := 0; i < 5; i++ {
		assert.False(t, g.TryClaim(rock))
		assert.False(t, g.TryClaim(pond))
	}
	assert.Equal(t, Rock, g.Get(rock))
	assert.Equal(t, Pond, g.Get(pond))
}

func TestGrid_FinishTending_Unclaimed(t *testing.T) {
	g := newTestGrid(t, 2)

	assert.Panics(t, func() {
		g.FinishTending(Position{X: 1, Y: 1})
	})
}

func TestGrid_Get_OutOfBounds(t *testing.T) {
	g := newTestGrid(t, 2)

	assert.Panics(t, func() {
		g.Get(Position{X: 2, Y: 0})
	})
}

func TestGrid_WaitUntilFree_NotClaimed(t *testing.T) {
	g := newTestGrid(t, 2)

	err := g.WaitUntilFree(context.Background(), Position{X: 1, Y: 0})
	assert.NoError(t, err)
}

func TestGrid_WaitUntilFree_BlocksUntilFinished(t *testing.T) {
	g := newTestGrid(t, 3)
	pos := Position{X: 1, Y: 1}
	require.True(t, g.TryClaim(pos))

	done := make(chan error, 1)
	go func() {
		done <- g.WaitUntilFree(context.Background(), pos)
	}()

	select {
	case <-done:
		t.Fatal("WaitUntilFree returned while the cell was being tended")
	case <-time.After(20 * time.Millisecond):
	}

	// Finishing an unrelated cell must not release the waiter.
	other := Position{X: 0, Y: 0}
	require.True(t, g.TryClaim(other))
	g.FinishTending(other)

	select {
	case <-done:
		t.Fatal("WaitUntilFree returned after an unrelated cell was finished")
	case <-time.After(20 * time.Millisecond):
	}

	g.FinishTending(pos)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("WaitUntilFree did not return after FinishTending")
	}
}

func TestGrid_WaitUntilFree_Cancelled(t *testing.T) {
	g := newTestGrid(t, 2)
	pos := Position{X: 0, Y: 1}
	require.True(t, g.TryClaim(pos))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := g.WaitUntilFree(ctx, pos)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGrid_PlaceObstacle_Errors(t *testing.T) {
	g := newTestGrid(t, 3)

	assert.ErrorIs(t, g.PlaceObstacle(Position{X: 3, Y: 0}, Rock), ErrOutOfBounds)
	assert.ErrorIs(t, g.PlaceObstacle(Position{X: 0, Y: 0}, Tended), ErrNotObstacle)

	require.NoError(t, g.PlaceObstacle(Position{X: 1, Y: 1}, Rock))
	assert.ErrorIs(t, g.PlaceObstacle(Position{X: 1, Y: 1}, Pond), ErrCellOccupied)
}

func TestGrid_Snapshot_IsCopy(t *testing.T) {
	g := newTestGrid(t, 2)
	snap := g.Snapshot()

	require.True(t, g.TryClaim(Position{X: 0, Y: 0}))

	assert.Equal(t, Untended, snap.At(Position{X: 0, Y: 0}))
	assert.Equal(t, BeingTended, g.Snapshot().At(Position{X: 0, Y: 0}))
}

func TestSnapshot_Settled(t *testing.T) {
	g := newTestGrid(t, 2)
	require.NoError(t, g.PlaceObstacle(Position{X: 0, Y: 0}, Pond))
	for _, p := range []Position{{1, 0}, {0, 1}, {1, 1}} {
		require.True(t, g.TryClaim(p))
		g.FinishTending(p)
	}

	snap := g.Snapshot()
	assert.True(t, snap.Settled())
	assert.Equal(t, 3, snap.Count(Tended))
	assert.Equal(t, 1, snap.Count(Pond))
}
