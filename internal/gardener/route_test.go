// ABOUTME: Tests for serpentine routes
// ABOUTME: Verifies full coverage, mirrored default routes and route validation

package gardener

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/gardeners/internal/garden"
)

func TestRoute_Path_CoversEveryCellOnce(t *testing.T) {
	for size := garden.MinSize; size <= 12; size++ {
		first, second := DefaultRoutes(size)
		for _, r := range []Route{first, second} {
			path, err := r.Path(size)
			require.NoError(t, err, "size %d route %+v", size, r)

			assert.Len(t, path, size*size, "size %d", size)
			seen := make(map[garden.Position]bool, len(path))
			for _, p := range path {
				assert.True(t, p.InBounds(size))
				assert.False(t, seen[p], "size %d visits %s twice", size, p)
				seen[p] = true
			}
			assert.Equal(t, r.End, path[len(path)-1])
		}
	}
}

func TestDefaultRoutes_Original(t *testing.T) {
	first, second := DefaultRoutes(10)

	assert.Equal(t, Route{
		Start:     garden.Position{X: 0, Y: 9},
		End:       garden.Position{X: 0, Y: 0},
		Primary:   garden.Right,
		Turn:      garden.Down,
		Alternate: garden.Left,
	}, first)
	assert.Equal(t, Route{
		Start:     garden.Position{X: 9, Y: 0},
		End:       garden.Position{X: 0, Y: 0},
		Primary:   garden.Up,
		Turn:      garden.Left,
		Alternate: garden.Down,
	}, second)
}

func TestDefaultRoutes_OddSize(t *testing.T) {
	first, second := DefaultRoutes(3)

	assert.Equal(t, garden.Position{X: 2, Y: 0}, first.End)
	assert.Equal(t, garden.Position{X: 0, Y: 2}, second.End)
}

func TestRoute_Path_FourByFour(t *testing.T) {
	r := Route{
		Start:     garden.Position{X: 0, Y: 3},
		End:       garden.Position{X: 0, Y: 0},
		Primary:   garden.Right,
		Turn:      garden.Down,
		Alternate: garden.Left,
	}

	path, err := r.Path(4)
	require.NoError(t, err)

	want := []garden.Position{
		{X: 0, Y: 3}, {X: 1, Y: 3}, {X: 2, Y: 3}, {X: 3, Y: 3},
		{X: 3, Y: 2}, {X: 2, Y: 2}, {X: 1, Y: 2}, {X: 0, Y: 2},
		{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1},
		{X: 3, Y: 0}, {X: 2, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 0},
	}
	assert.Equal(t, want, path)
}

func TestRoute_Next(t *testing.T) {
	r := Route{Primary: garden.Up, Turn: garden.Left, Alternate: garden.Down}

	next, dir, ok := r.Next(garden.Position{X: 3, Y: 1}, garden.Up, 4)
	require.True(t, ok)
	assert.Equal(t, garden.Position{X: 3, Y: 2}, next)
	assert.Equal(t, garden.Up, dir)

	// At the top edge: turn left and flip to the alternate direction.
	next, dir, ok = r.Next(garden.Position{X: 3, Y: 3}, garden.Up, 4)
	require.True(t, ok)
	assert.Equal(t, garden.Position{X: 2, Y: 3}, next)
	assert.Equal(t, garden.Down, dir)

	// At the bottom edge going down: turn left and flip back.
	next, dir, ok = r.Next(garden.Position{X: 2, Y: 0}, garden.Down, 4)
	require.True(t, ok)
	assert.Equal(t, garden.Position{X: 1, Y: 0}, next)
	assert.Equal(t, garden.Up, dir)

	// Corner with nowhere left to turn.
	_, _, ok = r.Next(garden.Position{X: 0, Y: 0}, garden.Down, 4)
	assert.False(t, ok)
}

func TestRoute_Validate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		route Route
		want  error
	}{
		{
			name: "start out of bounds",
			route: Route{
				Start: garden.Position{X: 4, Y: 0}, End: garden.Position{X: 0, Y: 0},
				Primary: garden.Right, Turn: garden.Down, Alternate: garden.Left,
			},
			want: ErrRouteOutOfBounds,
		},
		{
			name: "end out of bounds",
			route: Route{
				Start: garden.Position{X: 0, Y: 0}, End: garden.Position{X: 0, Y: -1},
				Primary: garden.Right, Turn: garden.Up, Alternate: garden.Left,
			},
			want: ErrRouteOutOfBounds,
		},
		{
			name: "alternate not opposite",
			route: Route{
				Start: garden.Position{X: 0, Y: 3}, End: garden.Position{X: 0, Y: 0},
				Primary: garden.Right, Turn: garden.Down, Alternate: garden.Up,
			},
			want: ErrInvalidDirections,
		},
		{
			name: "turn along sweep axis",
			route: Route{
				Start: garden.Position{X: 0, Y: 3}, End: garden.Position{X: 0, Y: 0},
				Primary: garden.Right, Turn: garden.Left, Alternate: garden.Left,
			},
			want: ErrInvalidDirections,
		},
		{
			name: "end behind start",
			route: Route{
				Start: garden.Position{X: 0, Y: 2}, End: garden.Position{X: 0, Y: 3},
				Primary: garden.Right, Turn: garden.Down, Alternate: garden.Left,
			},
			want: ErrEndUnreachable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.route.Validate(4), tt.want)
		})
	}
}
