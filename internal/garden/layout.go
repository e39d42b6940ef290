// ABOUTME: Obstacle layouts and seeded random obstacle generation
// ABOUTME: Layouts are applied once before the gardeners start

package garden

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ErrTooManyObstacles indicates an obstacle count that cannot fit on the grid.
var ErrTooManyObstacles = errors.New("too many obstacles")

// Obstacle is a rock or pond at a fixed position.
type Obstacle struct {
	Pos  Position
	Kind CellState
}

// Layout is the set of obstacles placed before a run.
type Layout []Obstacle

// Apply places every obstacle in l, stopping at the first invalid one.
func (g *Grid) Apply(l Layout) error {
	for _, o := range l {
		if err := g.PlaceObstacle(o.Pos, o.Kind); err != nil {
			return fmt.Errorf("placing %s at %s: %w", o.Kind, o.Pos, err)
		}
	}
	return nil
}

// Validate checks l against a size x size grid without touching one.
func (l Layout) Validate(size int) error {
	seen := make(map[Position]struct{}, len(l))
	for _, o := range l {
		if !o.Pos.InBounds(size) {
			return fmt.Errorf("%w: %s", ErrOutOfBounds, o.Pos)
		}
		if !o.Kind.IsObstacle() {
			return fmt.Errorf("%w: %s at %s", ErrNotObstacle, o.Kind, o.Pos)
		}
		if _, dup := seen[o.Pos]; dup {
			return fmt.Errorf("%w: %s listed twice", ErrCellOccupied, o.Pos)
		}
		seen[o.Pos] = struct{}{}
	}
	return nil
}

// RandomLayout picks between minCount and maxCount obstacles on distinct
// cells, each a rock or a pond with equal probability.
func RandomLayout(rng *rand.Rand, size, minCount, maxCount int) (Layout, error) {
	if size < MinSize || size > MaxSize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if minCount < 0 || maxCount < minCount {
		return nil, fmt.Errorf("invalid obstacle range %d..%d", minCount, maxCount)
	}
	if maxCount > size*size {
		return nil, fmt.Errorf("%w: %d on a %dx%d grid", ErrTooManyObstacles, maxCount, size, size)
	}

	count := minCount + rng.IntN(maxCount-minCount+1)

	// Partial Fisher-Yates over cell indices keeps positions distinct.
	cells := make([]int, size*size)
	for i := range cells {
		cells[i] = i
	}

	layout := make(Layout, 0, count)
	for i := 0; i < count; i++ {
		j := i + rng.IntN(len(cells)-i)
		cells[i], cells[j] = cells[j], cells[i]

		kind := Rock
		if rng.IntN(2) == 1 {
			kind = Pond
		}
		layout = append(layout, Obstacle{
			Pos:  Position{X: cells[i] % size, Y: cells[i] / size},
			Kind: kind,
		})
	}
	return layout, nil
}
