// ABOUTME: Text renderers for garden frames, coloured for terminals and plain for files
// ABOUTME: Summary prints one status line per gardener

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/2389/gardeners/internal/garden"
	"github.com/2389/gardeners/internal/gardener"
	"github.com/2389/gardeners/internal/scheduler"
)

// Renderer writes one frame.
type Renderer interface {
	Render(w io.Writer, f scheduler.Frame) error
}

// Terminal renders frames with coloured backgrounds.
type Terminal struct {
	first  *color.Color
	second *color.Color
	both   *color.Color
	ground *color.Color
}

// NewTerminal creates a terminal renderer. With useColor false the escape
// codes are left out even on a TTY.
func NewTerminal(useColor bool) *Terminal {
	t := &Terminal{
		first:  color.New(color.BgHiGreen),
		second: color.New(color.BgHiYellow),
		both:   color.New(color.BgYellow),
		ground: color.New(color.BgGreen),
	}
	for _, c := range []*color.Color{t.first, t.second, t.both, t.ground} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return t
}

// Render writes the grid with gardener positions highlighted, followed by a
// blank line.
func (t *Terminal) Render(w io.Writer, f scheduler.Frame) error {
	var b strings.Builder
	size := f.Grid.Size
	for y := size - 1; y >= 0; y-- {
		for x := 0; x < size; x++ {
			pos := garden.Position{X: x, Y: y}
			b.WriteString(t.paint(f.Gardeners, pos).Sprint(terminalCell(f.Grid.At(pos))))
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

func (t *Terminal) paint(gardeners []gardener.Status, pos garden.Position) *color.Color {
	onFirst := len(gardeners) > 0 && gardeners[0].Position == pos
	onSecond := len(gardeners) > 1 && gardeners[1].Position == pos
	switch {
	case onFirst && onSecond:
		return t.both
	case onFirst:
		return t.first
	case onSecond:
		return t.second
	default:
		return t.ground
	}
}

// terminalCell pads every glyph to three columns.
func terminalCell(s garden.CellState) string {
	if s == garden.Untended {
		return "   "
	}
	return s.Symbol() + " "
}

// Plain renders frames without colours or gardener markers.
type Plain struct{}

// Render writes the grid followed by a blank line.
func (Plain) Render(w io.Writer, f scheduler.Frame) error {
	var b strings.Builder
	size := f.Grid.Size
	for y := size - 1; y >= 0; y-- {
		for x := 0; x < size; x++ {
			b.WriteString(f.Grid.At(garden.Position{X: x, Y: y}).Symbol())
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

// Summary returns one line per gardener and a closing line with the cell counts.
func Summary(f scheduler.Frame) string {
	var b strings.Builder
	for _, g := range f.Gardeners {
		state := "working"
		if g.Finished {
			state = "finished"
		}
		fmt.Fprintf(&b, "%-10s %-8s at %-8s tended %3d  passed %3d  step %s\n",
			g.Name, state, g.Position, g.Tended, g.Passed, g.Step)
	}
	fmt.Fprintf(&b, "cells: %d tended, %d rocks, %d ponds, %d untended\n",
		f.Grid.Count(garden.Tended), f.Grid.Count(garden.Rock),
		f.Grid.Count(garden.Pond), f.Grid.Count(garden.Untended)+f.Grid.Count(garden.BeingTended))
	return b.String()
}
