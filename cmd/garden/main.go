// ABOUTME: Entry point for the garden simulation CLI
// ABOUTME: Two gardeners tend a shared grid concurrently, drawn live in the terminal

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/akamensky/argparse"
	"github.com/fatih/color"

	"github.com/2389/gardeners/internal/config"
	"github.com/2389/gardeners/internal/store"
)

// Version is set at build time.
var version = "dev"

func main() {
	parser := argparse.NewParser("garden", "Two gardeners tending one garden at the same time")

	runCmd := parser.NewCommand("run", "Run the simulation")
	runConfig := runCmd.String("c", "config", &argparse.Options{Help: "Config file (default: $GARDEN_CONFIG or XDG path)"})
	speedA := runCmd.Float("a", "speed-a", &argparse.Options{Help: "First gardener's speed in squares per second"})
	speedB := runCmd.Float("b", "speed-b", &argparse.Options{Help: "Second gardener's speed in squares per second"})
	random := runCmd.Flag("r", "random", &argparse.Options{Help: "Pick both speeds at random from 1..100"})
	speedsFile := runCmd.String("f", "speeds-file", &argparse.Options{Help: "Read both speeds from a file"})
	fromStdin := runCmd.Flag("s", "stdin", &argparse.Options{Help: "Read both speeds from standard input"})
	framesPath := runCmd.String("o", "frames", &argparse.Options{Help: "Also write every frame to this file"})
	seed := runCmd.Int("e", "seed", &argparse.Options{Help: "Obstacle seed (0 picks one)"})
	gridSize := runCmd.Int("g", "size", &argparse.Options{Help: "Grid size, 2..50"})
	quiet := runCmd.Flag("q", "quiet", &argparse.Options{Help: "Print only the final summary"})
	noColor := runCmd.Flag("n", "no-color", &argparse.Options{Help: "Disable colours"})

	initCmd := parser.NewCommand("init", "Write a default config file")
	initConfig := initCmd.String("c", "config", &argparse.Options{Help: "Where to write the config"})

	historyCmd := parser.NewCommand("history", "List stored runs")
	historyConfig := historyCmd.String("c", "config", &argparse.Options{Help: "Config file"})
	limit := historyCmd.Int("n", "limit", &argparse.Options{Default: 20, Help: "Number of runs to show"})

	reportCmd := parser.NewCommand("report", "Print a stored run")
	reportConfig := reportCmd.String("c", "config", &argparse.Options{Help: "Config file"})
	runID := reportCmd.String("i", "id", &argparse.Options{Required: true, Help: "Run ID"})
	asHTML := reportCmd.Flag("H", "html", &argparse.Options{Help: "Render HTML instead of Markdown"})

	versionCmd := parser.NewCommand("version", "Print the version")

	if err := parser.Parse(positionalSpeeds(os.Args)); err != nil {
		fmt.Fprint(os.Stderr, parser.Usage(err))
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch {
	case runCmd.Happened():
		if *seed < 0 {
			err = fmt.Errorf("seed must not be negative, got %d", *seed)
			break
		}
		err = runSimulation(ctx, *runConfig, runOptions{
			speedA:     *speedA,
			speedB:     *speedB,
			random:     *random,
			speedsFile: *speedsFile,
			stdin:      *fromStdin,
			framesPath: *framesPath,
			seed:       uint64(*seed),
			gridSize:   *gridSize,
			quiet:      *quiet,
			noColor:    *noColor,
		})
	case initCmd.Happened():
		path := *initConfig
		if path == "" {
			path = config.ConfigPath()
		}
		err = runInit(path, os.Stdout)
	case historyCmd.Happened():
		err = withStore(*historyConfig, func(cfg *config.Config, s store.Store) error {
			return runHistory(ctx, s, *limit, os.Stdout)
		})
	case reportCmd.Happened():
		err = withStore(*reportConfig, func(cfg *config.Config, s store.Store) error {
			return runReport(ctx, s, *runID, *asHTML, os.Stdout)
		})
	case versionCmd.Happened():
		fmt.Println("garden", version)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("Error:"), err)
		os.Exit(1)
	}
}

// positionalSpeeds rewrites "garden A B ..." and "garden run A B ..." into
// "garden run -a A -b B ...". Other arguments are returned unchanged.
func positionalSpeeds(args []string) []string {
	rest := args[1:]
	if len(rest) > 0 && rest[0] == "run" {
		rest = rest[1:]
	}
	if len(rest) < 2 || !isNumber(rest[0]) || !isNumber(rest[1]) {
		return args
	}

	out := make([]string, 0, len(args)+3)
	out = append(out, args[0], "run", "-a", rest[0], "-b", rest[1])
	return append(out, rest[2:]...)
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// loadConfig reads the config file. Without an explicit path a missing
// default file falls back to Default.
func loadConfig(path string) (*config.Config, error) {
	explicit := path != ""
	if !explicit {
		path = config.ConfigPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// openStore opens the run history configured in cfg, or returns nil when
// history is disabled.
func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.Database.Path == "" {
		return nil, nil
	}
	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening run history: %w", err)
	}
	return s, nil
}

func withStore(configPath string, fn func(*config.Config, store.Store) error) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	slog.SetDefault(setupLogger(cfg.Logging, os.Stderr))

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	if s == nil {
		return errors.New("run history is disabled: database.path is empty")
	}
	defer s.Close()

	return fn(cfg, s)
}

func runSimulation(ctx context.Context, configPath string, opts runOptions) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)

	env := runEnv{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		logger: logger,
	}
	if err := applyOverrides(cfg, opts, env); err != nil {
		return err
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	if s != nil {
		defer s.Close()
		env.store = s
	}

	run, err := simulate(ctx, cfg, env)
	if err != nil {
		return err
	}
	if run.Status == store.StatusCancelled {
		logger.Warn("run interrupted before both gardeners finished", "run_id", run.ID)
	}
	return nil
}
