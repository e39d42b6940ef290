// ABOUTME: Mutex-guarded square grid shared by both gardeners
// ABOUTME: Provides claim-if-free, finish, wait-until-free and consistent snapshots

package garden

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

const (
	// MinSize and MaxSize bound the grid dimension.
	MinSize = 2
	MaxSize = 50

	// DefaultSize matches the garden of the original simulation.
	DefaultSize = 10
)

var (
	// ErrInvalidSize indicates a grid dimension outside MinSize..MaxSize.
	ErrInvalidSize = errors.New("invalid grid size")

	// ErrOutOfBounds indicates a position that is not on the grid.
	ErrOutOfBounds = errors.New("position out of bounds")

	// ErrNotObstacle indicates an obstacle kind other than Rock or Pond.
	ErrNotObstacle = errors.New("not an obstacle kind")

	// ErrCellOccupied indicates an obstacle placed on a cell that is not Untended.
	ErrCellOccupied = errors.New("cell already occupied")
)

// Grid is the garden shared by the gardeners. All cell state is guarded by mu.
type Grid struct {
	size  int
	mu    sync.Mutex
	cells []CellState
	// released is closed and replaced whenever a cell leaves BeingTended.
	released chan struct{}
}

// NewGrid creates a size x size grid of Untended cells.
func NewGrid(size int) (*Grid, error) {
	if size < MinSize || size > MaxSize {
		return nil, fmt.Errorf("%w: %d (want %d..%d)", ErrInvalidSize, size, MinSize, MaxSize)
	}
	return &Grid{
		size:     size,
		cells:    make([]CellState, size*size),
		released: make(chan struct{}),
	}, nil
}

// Size returns the grid dimension.
func (g *Grid) Size() int {
	return g.size
}

// index panics on positions off the grid, the same way a slice index would.
func (g *Grid) index(pos Position) int {
	if !pos.InBounds(g.size) {
		panic(fmt.Sprintf("garden: position %s outside %dx%d grid", pos, g.size, g.size))
	}
	return pos.Y*g.size + pos.X
}

// Get returns the state of the cell at pos.
func (g *Grid) Get(pos Position) CellState {
	i := g.index(pos)
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cells[i]
}

// TryClaim marks an Untended cell as BeingTended and reports whether it did.
// Tended, obstacle and already claimed cells are left unchanged.
func (g *Grid) TryClaim(pos Position) bool {
	i := g.index(pos)
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cells[i] != Untended {
		return false
	}
	g.cells[i] = BeingTended
	return true
}

// FinishTending moves a claimed cell to Tended and wakes anyone waiting for it.
// Only the gardener whose TryClaim succeeded may call it.
func (g *Grid) FinishTending(pos Position) {
	i := g.index(pos)
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cells[i] != BeingTended {
		panic(fmt.Sprintf("garden: finish tending %s in state %s", pos, g.cells[i]))
	}
	g.cells[i] = Tended
	close(g.released)
	g.released = make(chan struct{})
}

// WaitUntilFree blocks while the cell at pos is BeingTended.
func (g *Grid) WaitUntilFree(ctx context.Context, pos Position) error {
	i := g.index(pos)
	for {
		g.mu.Lock()
		state, released := g.cells[i], g.released
		g.mu.Unlock()

		if state != BeingTended {
			return nil
		}

		select {
		case <-released:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// PlaceObstacle puts a rock or a pond on an Untended cell.
// It is a setup operation and must not race with gardeners.
func (g *Grid) PlaceObstacle(pos Position, kind CellState) error {
	if !pos.InBounds(g.size) {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, pos)
	}
	if !kind.IsObstacle() {
		return fmt.Errorf("%w: %s", ErrNotObstacle, kind)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	i := pos.Y*g.size + pos.X
	if g.cells[i] != Untended {
		return fmt.Errorf("%w: %s is %s", ErrCellOccupied, pos, g.cells[i])
	}
	g.cells[i] = kind
	return nil
}

// Snapshot returns a consistent copy of every cell.
func (g *Grid) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	cells := make([]CellState, len(g.cells))
	copy(cells, g.cells)
	return Snapshot{Size: g.size, Cells: cells}
}

// Snapshot is an immutable copy of the grid, indexed row by row from y=0.
type Snapshot struct {
	Size  int
	Cells []CellState
}

// At returns the state at pos.
func (s Snapshot) At(pos Position) CellState {
	return s.Cells[pos.Y*s.Size+pos.X]
}

// Count returns the number of cells in the given state.
func (s Snapshot) Count(state CellState) int {
	n := 0
	for _, c := range s.Cells {
		if c == state {
			n++
		}
	}
	return n
}

// Settled reports whether no cell is Untended or BeingTended.
func (s Snapshot) Settled() bool {
	return s.Count(Untended) == 0 && s.Count(BeingTended) == 0
}
