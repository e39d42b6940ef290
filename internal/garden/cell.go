// ABOUTME: Cell states, grid positions and sweep directions for the garden grid
// ABOUTME: Value types shared by the grid, the gardeners and the renderers

package garden

import (
	"fmt"
	"strings"
)

// CellState is the state of a single garden square.
type CellState uint8

const (
	Untended CellState = iota
	Tended
	Rock
	Pond
	BeingTended
)

var cellStateNames = [...]string{
	Untended:    "untended",
	Tended:      "tended",
	Rock:        "rock",
	Pond:        "pond",
	BeingTended: "being_tended",
}

func (s CellState) String() string {
	if int(s) < len(cellStateNames) {
		return cellStateNames[s]
	}
	return fmt.Sprintf("CellState(%d)", uint8(s))
}

// MarshalText encodes the state by name.
func (s CellState) MarshalText() ([]byte, error) {
	if int(s) >= len(cellStateNames) {
		return nil, fmt.Errorf("unknown cell state %d", uint8(s))
	}
	return []byte(cellStateNames[s]), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (s *CellState) UnmarshalText(text []byte) error {
	v, err := ParseCellState(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// IsObstacle reports whether the state is a rock or a pond.
func (s CellState) IsObstacle() bool {
	return s == Rock || s == Pond
}

// Symbol returns the glyph used when printing the garden.
func (s CellState) Symbol() string {
	switch s {
	case Tended:
		return "🌻"
	case Rock:
		return "🗿"
	case Pond:
		return "🔵"
	case BeingTended:
		return "🚧"
	default:
		return "  "
	}
}

// ParseCellState parses the name produced by String.
func ParseCellState(s string) (CellState, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range cellStateNames {
		if n == name {
			return CellState(i), nil
		}
	}
	return 0, fmt.Errorf("unknown cell state %q", s)
}

// Position addresses a square. X grows to the right, Y grows upwards.
type Position struct {
	X int
	Y int
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// InBounds reports whether p lies on a size x size grid.
func (p Position) InBounds(size int) bool {
	return p.X >= 0 && p.X < size && p.Y >= 0 && p.Y < size
}

// Move returns the neighbouring position in direction d.
func (p Position) Move(d Direction) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Direction is one of the four sweep directions.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

var directionNames = [...]string{
	Up:    "up",
	Down:  "down",
	Left:  "left",
	Right: "right",
}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

// MarshalText encodes the direction by name.
func (d Direction) MarshalText() ([]byte, error) {
	if int(d) >= len(directionNames) {
		return nil, fmt.Errorf("unknown direction %d", uint8(d))
	}
	return []byte(directionNames[d]), nil
}

// UnmarshalText accepts up, down, left and right in any case.
func (d *Direction) UnmarshalText(text []byte) error {
	v, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Delta returns the x and y offsets of a single step in direction d.
func (d Direction) Delta() (int, int) {
	switch d {
	case Up:
		return 0, 1
	case Down:
		return 0, -1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	default:
		return 0, 0
	}
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

// Blocked reports whether a step from p in direction d would leave the grid.
func (d Direction) Blocked(p Position, size int) bool {
	return !p.Move(d).InBounds(size)
}

// ParseDirection accepts up, down, left and right in any case.
func ParseDirection(s string) (Direction, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range directionNames {
		if n == name {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}
