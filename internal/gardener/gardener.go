// ABOUTME: Gardener agent that tends squares while following its route
// ABOUTME: Single-writer step loop with atomically readable position and status

package gardener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/2389/gardeners/internal/garden"
)

// ErrInvalidStep indicates a non-positive step duration.
var ErrInvalidStep = errors.New("invalid step duration")

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Option configures a Gardener.
type Option func(*Gardener)

// WithSleep replaces the timer used for tending and passing through.
func WithSleep(fn SleepFunc) Option {
	return func(g *Gardener) {
		g.sleep = fn
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gardener) {
		g.logger = logger
	}
}

// Status is a point-in-time view of a gardener.
type Status struct {
	Name     string
	Position garden.Position
	End      garden.Position
	Finished bool
	Tended   int
	Passed   int
	Step     time.Duration
}

// Gardener walks a route over a shared grid, tending Untended squares.
type Gardener struct {
	name   string
	grid   *garden.Grid
	route  Route
	step   time.Duration
	sleep  SleepFunc
	logger *slog.Logger

	// dir is only touched by the goroutine calling Step.
	dir garden.Direction

	pos      atomic.Pointer[garden.Position]
	finished atomic.Bool
	tended   atomic.Int64
	passed   atomic.Int64
}

// New creates a gardener at the start of route.
func New(name string, grid *garden.Grid, route Route, step time.Duration, opts ...Option) (*Gardener, error) {
	if step <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStep, step)
	}
	if err := route.Validate(grid.Size()); err != nil {
		return nil, fmt.Errorf("gardener %s: %w", name, err)
	}

	g := &Gardener{
		name:   name,
		grid:   grid,
		route:  route,
		step:   step,
		sleep:  sleepContext,
		logger: slog.Default(),
		dir:    route.Primary,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "gardener", "gardener", name)

	start := route.Start
	g.pos.Store(&start)
	return g, nil
}

// Name returns the gardener's name.
func (g *Gardener) Name() string {
	return g.name
}

// StepDuration returns the time spent passing through a square.
func (g *Gardener) StepDuration() time.Duration {
	return g.step
}

// Position returns the current square.
func (g *Gardener) Position() garden.Position {
	return *g.pos.Load()
}

// Finished reports whether the gardener has reached the end of its route.
func (g *Gardener) Finished() bool {
	return g.finished.Load()
}

// Status returns a snapshot of the gardener's progress.
func (g *Gardener) Status() Status {
	return Status{
		Name:     g.name,
		Position: g.Position(),
		End:      g.route.End,
		Finished: g.Finished(),
		Tended:   int(g.tended.Load()),
		Passed:   int(g.passed.Load()),
		Step:     g.step,
	}
}

// Step tends or passes through the current square and then either finishes
// or moves to the next square. It returns true once the route is complete;
// further calls do nothing.
func (g *Gardener) Step(ctx context.Context) (bool, error) {
	if g.finished.Load() {
		return true, nil
	}

	pos := g.Position()
	if err := g.tend(ctx, pos); err != nil {
		return false, err
	}

	if pos == g.route.End {
		g.finished.Store(true)
		g.logger.Info("route finished",
			"position", pos.String(),
			"tended", g.tended.Load(),
			"passed", g.passed.Load(),
		)
		return true, nil
	}

	next, dir, ok := g.route.Next(pos, g.dir, g.grid.Size())
	if !ok {
		// Routes are validated in New, so this is a broken invariant.
		panic(fmt.Sprintf("gardener %s: sweep stuck at %s", g.name, pos))
	}

	if err := g.grid.WaitUntilFree(ctx, next); err != nil {
		return false, err
	}
	g.dir = dir
	g.pos.Store(&next)
	return false, nil
}

// tend claims and tends pos, or passes through it when the claim fails.
func (g *Gardener) tend(ctx context.Context, pos garden.Position) error {
	if !g.grid.TryClaim(pos) {
		g.passed.Add(1)
		return g.sleep(ctx, g.step)
	}

	if err := g.sleep(ctx, 2*g.step); err != nil {
		return err
	}
	g.grid.FinishTending(pos)
	g.tended.Add(1)
	g.logger.Debug("tended square", "position", pos.String())
	return nil
}

// Run steps until the route is complete or ctx is done.
func (g *Gardener) Run(ctx context.Context) error {
	for {
		done, err := g.Step(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
