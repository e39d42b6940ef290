// ABOUTME: Store interface and data types for garden run history
// ABOUTME: Defines Run, GardenerResult and CellResult plus conversions from grid snapshots

package store

import (
	"context"
	"errors"
	"time"

	"github.com/2389/gardeners/internal/garden"
)

// ErrNotFound is returned when a requested run does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateRun is returned when saving a run whose ID is already stored
var ErrDuplicateRun = errors.New("run already exists")

// Run status values
const (
	StatusCompleted = "completed" // both gardeners reached their end
	StatusCancelled = "cancelled" // interrupted before finishing
)

// Run is one complete simulation
type Run struct {
	ID         string
	GridSize   int
	Seed       uint64
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
	Gardeners  []GardenerResult
	Cells      []CellResult // empty when loaded by ListRuns
}

// Duration returns how long the run took.
func (r *Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Snapshot rebuilds the final grid from the stored cells.
// Cells that were not stored read as Untended.
func (r *Run) Snapshot() garden.Snapshot {
	s := garden.Snapshot{
		Size:  r.GridSize,
		Cells: make([]garden.CellState, r.GridSize*r.GridSize),
	}
	for _, c := range r.Cells {
		if c.Pos.InBounds(r.GridSize) {
			s.Cells[c.Pos.Y*r.GridSize+c.Pos.X] = c.State
		}
	}
	return s
}

// GardenerResult is a gardener's configuration and outcome
type GardenerResult struct {
	Name     string
	Speed    float64
	Step     time.Duration
	Start    garden.Position
	End      garden.Position
	Final    garden.Position
	Tended   int
	Passed   int
	Finished bool
}

// CellResult is the final state of one cell
type CellResult struct {
	Pos   garden.Position
	State garden.CellState
}

// CellsFromSnapshot lists every cell of s.
func CellsFromSnapshot(s garden.Snapshot) []CellResult {
	cells := make([]CellResult, 0, len(s.Cells))
	for i, state := range s.Cells {
		cells = append(cells, CellResult{
			Pos:   garden.Position{X: i % s.Size, Y: i / s.Size},
			State: state,
		})
	}
	return cells
}

// Store defines the interface for run history persistence
type Store interface {
	// SaveRun stores a run with its gardeners and cells.
	// Returns ErrDuplicateRun if the ID is already stored.
	SaveRun(ctx context.Context, run *Run) error

	// GetRun retrieves a run with gardeners and cells.
	// Returns ErrNotFound if the run doesn't exist.
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns the most recent runs first, without cells.
	// A limit of zero or less returns every run.
	ListRuns(ctx context.Context, limit int) ([]*Run, error)

	// Close closes the store
	Close() error
}
