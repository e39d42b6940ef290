// ABOUTME: The run command: builds the garden, runs both gardeners and renders frames
// ABOUTME: Stores the finished or interrupted run when a database is configured

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/2389/gardeners/internal/config"
	"github.com/2389/gardeners/internal/garden"
	"github.com/2389/gardeners/internal/gardener"
	"github.com/2389/gardeners/internal/render"
	"github.com/2389/gardeners/internal/scheduler"
	"github.com/2389/gardeners/internal/store"
)

// errSpeedModes is returned when more than one speed source is selected.
var errSpeedModes = errors.New("choose at most one of -a/-b, -r, -f and -s")

// runOptions are the command line overrides for a run.
type runOptions struct {
	speedA     float64
	speedB     float64
	random     bool
	speedsFile string
	stdin      bool
	framesPath string
	seed       uint64
	gridSize   int
	quiet      bool
	noColor    bool
}

// runEnv carries the process I/O so runs can be driven from tests.
type runEnv struct {
	stdin  io.Reader
	stdout io.Writer
	store  store.Store // nil disables history
	logger *slog.Logger
}

// applyOverrides folds the command line options into cfg.
func applyOverrides(cfg *config.Config, opts runOptions, env runEnv) error {
	if opts.gridSize != 0 {
		cfg.Resize(opts.gridSize)
	}
	if opts.seed != 0 {
		cfg.Obstacles.Seed = opts.seed
	}
	if opts.framesPath != "" {
		cfg.Render.FramesPath = opts.framesPath
	}
	if opts.noColor {
		cfg.Render.Color = false
	}
	if opts.quiet {
		cfg.Render.Quiet = true
	}
	if cfg.Obstacles.Seed == 0 {
		cfg.Obstacles.Seed = rand.Uint64()
	}

	modes := 0
	for _, set := range []bool{opts.speedA != 0 || opts.speedB != 0, opts.random, opts.speedsFile != "", opts.stdin} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		return errSpeedModes
	}

	switch {
	case opts.speedA != 0 || opts.speedB != 0:
		a, b := opts.speedA, opts.speedB
		if a == 0 {
			a = cfg.Gardeners[0].Speed
		}
		if b == 0 {
			b = cfg.Gardeners[1].Speed
		}
		cfg.SetSpeeds(a, b)

	case opts.random:
		a, b := config.RandomSpeeds(rand.New(rand.NewPCG(cfg.Obstacles.Seed, 0x5eed)))
		fmt.Fprintf(env.stdout, "Following numbers were generated: %g %g\n", a, b)
		cfg.SetSpeeds(a, b)

	case opts.speedsFile != "":
		f, err := os.Open(opts.speedsFile)
		if err != nil {
			return fmt.Errorf("opening speeds file: %w", err)
		}
		defer f.Close()
		a, b, err := config.ReadSpeeds(f)
		if err != nil {
			return err
		}
		cfg.SetSpeeds(a, b)

	case opts.stdin:
		fmt.Fprintln(env.stdout, "Enter the two gardeners' speeds in squares per second, separated by a space:")
		a, b, err := config.ReadSpeeds(env.stdin)
		if err != nil {
			return err
		}
		cfg.SetSpeeds(a, b)
	}

	return cfg.Validate()
}

// simulate runs one garden to completion or cancellation and returns the stored run.
func simulate(ctx context.Context, cfg *config.Config, env runEnv) (*store.Run, error) {
	logger := env.logger
	if logger == nil {
		logger = slog.Default()
	}

	grid, err := garden.NewGrid(cfg.Grid.Size)
	if err != nil {
		return nil, err
	}

	seed := cfg.Obstacles.Seed
	layout, err := cfg.Layout(rand.New(rand.NewPCG(seed, seed)))
	if err != nil {
		return nil, fmt.Errorf("building obstacle layout: %w", err)
	}
	if err := grid.Apply(layout); err != nil {
		return nil, fmt.Errorf("placing obstacles: %w", err)
	}

	routes := [2]gardener.Route{}
	if routes[0], routes[1], err = cfg.Routes(); err != nil {
		return nil, err
	}
	steps := [2]time.Duration{}
	if steps[0], steps[1], err = cfg.StepDurations(); err != nil {
		return nil, err
	}

	var gardeners [2]*gardener.Gardener
	for i := range gardeners {
		gardeners[i], err = gardener.New(cfg.Gardeners[i].Name, grid, routes[i], steps[i],
			gardener.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("creating gardener %q: %w", cfg.Gardeners[i].Name, err)
		}
	}

	broadcaster := scheduler.NewBroadcaster(logger)
	sched, err := scheduler.New(grid, gardeners[0], gardeners[1],
		scheduler.WithInterval(cfg.Render.Interval),
		scheduler.WithBroadcaster(broadcaster),
		scheduler.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	out, err := newFrameWriter(cfg, env)
	if err != nil {
		return nil, err
	}
	defer out.Close()

	// The subscription outlives ctx so the final frame of an interrupted run
	// is still drawn.
	subCtx, unsubscribe := context.WithCancel(context.Background())
	defer unsubscribe()
	frames, _ := broadcaster.Subscribe(subCtx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for f := range frames {
			out.write(f)
		}
	}()

	logger.Info("garden prepared",
		"size", cfg.Grid.Size,
		"seed", seed,
		"obstacles", len(layout),
		"first_speed", cfg.Gardeners[0].Speed,
		"second_speed", cfg.Gardeners[1].Speed,
	)

	startedAt := time.Now()
	runErr := sched.Run(ctx)
	finishedAt := time.Now()

	broadcaster.Close()
	wg.Wait()

	status := store.StatusCompleted
	if runErr != nil {
		if !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("running simulation: %w", runErr)
		}
		status = store.StatusCancelled
	}

	final := sched.Frame()
	out.write(final)
	if err := out.err(); err != nil {
		return nil, err
	}
	fmt.Fprint(env.stdout, render.Summary(final))

	run := &store.Run{
		ID:         uuid.New().String(),
		GridSize:   cfg.Grid.Size,
		Seed:       seed,
		Status:     status,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Cells:      store.CellsFromSnapshot(final.Grid),
	}
	for i, st := range final.Gardeners {
		run.Gardeners = append(run.Gardeners, store.GardenerResult{
			Name:     st.Name,
			Speed:    cfg.Gardeners[i].Speed,
			Step:     st.Step,
			Start:    routes[i].Start,
			End:      st.End,
			Final:    st.Position,
			Tended:   st.Tended,
			Passed:   st.Passed,
			Finished: st.Finished,
		})
	}

	if env.store != nil {
		// Saving should not be skipped because the run itself was interrupted.
		if err := env.store.SaveRun(context.WithoutCancel(ctx), run); err != nil {
			return nil, fmt.Errorf("saving run: %w", err)
		}
		fmt.Fprintf(env.stdout, "run %s saved (%s)\n", run.ID, status)
	}

	return run, nil
}

// frameWriter draws frames to the terminal and the optional frames file,
// skipping a frame identical to the one drawn before it.
type frameWriter struct {
	terminal render.Renderer
	stdout   io.Writer
	file     *os.File
	last     *scheduler.Frame
	firstErr error
}

func newFrameWriter(cfg *config.Config, env runEnv) (*frameWriter, error) {
	w := &frameWriter{stdout: env.stdout}
	if env.stdout != nil && !cfg.Render.Quiet {
		w.terminal = render.NewTerminal(cfg.Render.Color)
	}
	if cfg.Render.FramesPath != "" {
		f, err := os.Create(cfg.Render.FramesPath)
		if err != nil {
			return nil, fmt.Errorf("creating frames file: %w", err)
		}
		w.file = f
	}
	return w, nil
}

func (w *frameWriter) write(f scheduler.Frame) {
	if w.last != nil &&
		slices.Equal(w.last.Grid.Cells, f.Grid.Cells) &&
		slices.Equal(w.last.Gardeners, f.Gardeners) {
		return
	}
	w.last = &f

	if w.terminal != nil {
		w.record(w.terminal.Render(w.stdout, f))
	}
	if w.file != nil {
		w.record(render.Plain{}.Render(w.file, f))
	}
}

func (w *frameWriter) record(err error) {
	if err != nil && w.firstErr == nil {
		w.firstErr = fmt.Errorf("writing frame: %w", err)
	}
}

func (w *frameWriter) err() error {
	return w.firstErr
}

func (w *frameWriter) Close() error {
	if w.file == nil {
		return nil
	}
	return w.file.Close()
}
