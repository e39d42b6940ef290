// ABOUTME: Runs both gardeners concurrently and reports frames while they work
// ABOUTME: Joins every goroutine before returning the final state

package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/2389/gardeners/internal/garden"
	"github.com/2389/gardeners/internal/gardener"
)

var (
	// ErrMissingGardener indicates a nil gardener passed to New.
	ErrMissingGardener = errors.New("missing gardener")

	// ErrSameGardener indicates the same gardener passed twice.
	ErrSameGardener = errors.New("gardeners must be distinct")
)

// Frame is a consistent view of the simulation at one moment.
type Frame struct {
	Seq       uint64
	Grid      garden.Snapshot
	Gardeners []gardener.Status
	Done      bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithInterval sets how often frames are taken while gardeners run.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithBroadcaster publishes every frame to b.
func WithBroadcaster(b *Broadcaster) Option {
	return func(s *Scheduler) {
		s.broadcaster = b
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// Scheduler owns the two gardeners working one grid.
type Scheduler struct {
	grid        *garden.Grid
	gardeners   [2]*gardener.Gardener
	interval    time.Duration
	broadcaster *Broadcaster
	logger      *slog.Logger
	seq         atomic.Uint64
}

// New creates a scheduler for two gardeners sharing grid. The frame interval
// defaults to the shorter of the two step durations.
func New(grid *garden.Grid, first, second *gardener.Gardener, opts ...Option) (*Scheduler, error) {
	if first == nil || second == nil {
		return nil, ErrMissingGardener
	}
	if first == second {
		return nil, ErrSameGardener
	}

	s := &Scheduler{
		grid:      grid,
		gardeners: [2]*gardener.Gardener{first, second},
		interval:  min(first.StepDuration(), second.StepDuration()),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "scheduler")
	return s, nil
}

// Run starts both gardeners and blocks until they finish or ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	started := time.Now()
	s.logger.Info("simulation started",
		"grid_size", s.grid.Size(),
		"interval", s.interval,
		"first", s.gardeners[0].Name(),
		"second", s.gardeners[1].Name(),
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, gd := range s.gardeners {
		g.Go(func() error {
			return gd.Run(gctx)
		})
	}

	stop := make(chan struct{})
	reported := make(chan struct{})
	go func() {
		defer close(reported)
		s.report(gctx, stop)
	}()

	err := g.Wait()
	close(stop)
	<-reported

	final := s.Frame()
	s.publish(final)

	if err != nil {
		s.logger.Warn("simulation interrupted", "error", err, "elapsed", time.Since(started))
		return err
	}

	s.logger.Info("simulation finished",
		"elapsed", time.Since(started),
		"tended", final.Grid.Count(garden.Tended),
		"frames", final.Seq,
	)
	return nil
}

// report publishes a frame every interval until stop is closed, ctx is done
// or both gardeners have finished.
func (s *Scheduler) report(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f := s.Frame()
			s.publish(f)
			if f.Done {
				return
			}
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) publish(f Frame) {
	if s.broadcaster != nil {
		s.broadcaster.Publish(f)
	}
}

// Frame takes a frame now. It is safe to call during and after Run.
func (s *Scheduler) Frame() Frame {
	statuses := make([]gardener.Status, 0, len(s.gardeners))
	done := true
	for _, gd := range s.gardeners {
		st := gd.Status()
		statuses = append(statuses, st)
		done = done && st.Finished
	}

	return Frame{
		Seq:       s.seq.Add(1),
		Grid:      s.grid.Snapshot(),
		Gardeners: statuses,
		Done:      done,
	}
}

// Done reports whether both gardeners have finished.
func (s *Scheduler) Done() bool {
	return s.gardeners[0].Finished() && s.gardeners[1].Finished()
}
