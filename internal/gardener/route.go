// ABOUTME: Serpentine sweep routes followed by gardeners
// ABOUTME: Computes next positions, full paths and the default mirrored routes

package gardener

import (
	"errors"
	"fmt"

	"github.com/2389/gardeners/internal/garden"
)

var (
	// ErrRouteOutOfBounds indicates a start or end position off the grid.
	ErrRouteOutOfBounds = errors.New("route position out of bounds")

	// ErrInvalidDirections indicates a direction triple that is not a sweep.
	ErrInvalidDirections = errors.New("invalid route directions")

	// ErrEndUnreachable indicates the sweep never arrives at the end position.
	ErrEndUnreachable = errors.New("route end unreachable")
)

// Route describes a serpentine sweep over the grid.
type Route struct {
	Start     garden.Position
	End       garden.Position
	Primary   garden.Direction // first sweep direction
	Turn      garden.Direction // taken once at each edge
	Alternate garden.Direction // sweep direction after odd turns
}

// Next returns the position and sweep direction after one step from pos while
// sweeping in dir. ok is false when the sweep cannot continue.
func (r Route) Next(pos garden.Position, dir garden.Direction, size int) (next garden.Position, nextDir garden.Direction, ok bool) {
	if !dir.Blocked(pos, size) {
		return pos.Move(dir), dir, true
	}
	if r.Turn.Blocked(pos, size) {
		return pos, dir, false
	}

	nextDir = r.Primary
	if dir == r.Primary {
		nextDir = r.Alternate
	}
	return pos.Move(r.Turn), nextDir, true
}

// Validate checks the route against a size x size grid.
func (r Route) Validate(size int) error {
	_, err := r.Path(size)
	return err
}

// Path returns every position visited from Start to End inclusive.
func (r Route) Path(size int) ([]garden.Position, error) {
	if !r.Start.InBounds(size) {
		return nil, fmt.Errorf("%w: start %s", ErrRouteOutOfBounds, r.Start)
	}
	if !r.End.InBounds(size) {
		return nil, fmt.Errorf("%w: end %s", ErrRouteOutOfBounds, r.End)
	}
	if r.Alternate != r.Primary.Opposite() || r.Turn == r.Primary || r.Turn == r.Alternate {
		return nil, fmt.Errorf("%w: %s/%s/%s", ErrInvalidDirections, r.Primary, r.Turn, r.Alternate)
	}

	path := []garden.Position{r.Start}
	pos, dir := r.Start, r.Primary
	for pos != r.End {
		if len(path) >= size*size {
			return nil, fmt.Errorf("%w: %s from %s", ErrEndUnreachable, r.End, r.Start)
		}
		var ok bool
		pos, dir, ok = r.Next(pos, dir, size)
		if !ok {
			return nil, fmt.Errorf("%w: %s from %s", ErrEndUnreachable, r.End, r.Start)
		}
		path = append(path, pos)
	}
	return path, nil
}

// DefaultRoutes returns the two mirrored sweeps of the original garden: the
// first gardener starts in the top-left corner sweeping rows, the second in
// the bottom-right corner sweeping columns. Each ends on the last square of
// its full sweep.
func DefaultRoutes(size int) (Route, Route) {
	first := Route{
		Start:     garden.Position{X: 0, Y: size - 1},
		Primary:   garden.Right,
		Turn:      garden.Down,
		Alternate: garden.Left,
	}
	first.End = sweepEnd(first, size)

	second := Route{
		Start:     garden.Position{X: size - 1, Y: 0},
		Primary:   garden.Up,
		Turn:      garden.Left,
		Alternate: garden.Down,
	}
	second.End = sweepEnd(second, size)

	return first, second
}

// sweepEnd walks r until the sweep cannot continue and returns the last square.
func sweepEnd(r Route, size int) garden.Position {
	pos, dir := r.Start, r.Primary
	for {
		next, nextDir, ok := r.Next(pos, dir, size)
		if !ok {
			return pos
		}
		pos, dir = next, nextDir
	}
}
