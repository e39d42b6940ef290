// Package gardener implements the agents that walk the garden.
//
// # Route
//
// A Route is a serpentine sweep: move in the primary direction until the edge
// of the grid, step once in the turn direction, continue in the alternate
// direction, and repeat until the end position is reached.
//
//	first, second := gardener.DefaultRoutes(10)
//	path, err := first.Path(10) // every square once, ending at first.End
//
// # Gardener
//
// Each Step tends the current square (or passes through it), stops at the end
// of the route, or waits for the next square to stop being tended and moves
// onto it. Tending takes twice the step duration, passing through takes one.
//
// A Gardener is driven by a single goroutine. Status may be called from any
// goroutine at any time.
package gardener
