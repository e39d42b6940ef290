// ABOUTME: Configuration loading and validation for the garden simulation
// ABOUTME: Supports YAML and TOML files with environment variable expansion

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/2389/gardeners/internal/garden"
	"github.com/2389/gardeners/internal/gardener"
)

var (
	// ErrGardenerCount indicates a configuration without exactly two gardeners.
	ErrGardenerCount = errors.New("exactly two gardeners are required")

	// ErrInvalidObstacles indicates an obstacle range that cannot be placed.
	ErrInvalidObstacles = errors.New("invalid obstacle configuration")
)

// Config represents the complete simulation configuration
type Config struct {
	Grid      GridConfig       `yaml:"grid" toml:"grid"`
	Gardeners []GardenerConfig `yaml:"gardeners" toml:"gardeners"`
	Obstacles ObstaclesConfig  `yaml:"obstacles" toml:"obstacles"`
	Render    RenderConfig     `yaml:"render" toml:"render"`
	Database  DatabaseConfig   `yaml:"database" toml:"database"`
	Logging   LoggingConfig    `yaml:"logging" toml:"logging"`
}

// GridConfig holds the garden dimensions
type GridConfig struct {
	Size int `yaml:"size" toml:"size"`
}

// GardenerConfig holds one gardener's settings
type GardenerConfig struct {
	Name  string       `yaml:"name" toml:"name"`
	Speed float64      `yaml:"speed" toml:"speed"` // squares per second
	Route *RouteConfig `yaml:"route,omitempty" toml:"route,omitempty"`
}

// RouteConfig overrides the default sweep of a gardener
type RouteConfig struct {
	Start     PointConfig       `yaml:"start" toml:"start"`
	End       PointConfig       `yaml:"end" toml:"end"`
	Primary   garden.Direction  `yaml:"primary" toml:"primary"`
	Turn      garden.Direction  `yaml:"turn" toml:"turn"`
	Alternate *garden.Direction `yaml:"alternate,omitempty" toml:"alternate,omitempty"` // defaults to the opposite of primary
}

// PointConfig is a grid position
type PointConfig struct {
	X int `yaml:"x" toml:"x"`
	Y int `yaml:"y" toml:"y"`
}

// ObstaclesConfig holds obstacle placement settings
type ObstaclesConfig struct {
	Seed   uint64           `yaml:"seed" toml:"seed"`
	Min    int              `yaml:"min" toml:"min"`
	Max    int              `yaml:"max" toml:"max"`
	Layout []ObstacleConfig `yaml:"layout,omitempty" toml:"layout,omitempty"`
}

// ObstacleConfig is a single rock or pond
type ObstacleConfig struct {
	X    int              `yaml:"x" toml:"x"`
	Y    int              `yaml:"y" toml:"y"`
	Kind garden.CellState `yaml:"kind" toml:"kind"`
}

// RenderConfig holds frame output settings
type RenderConfig struct {
	Interval    time.Duration `yaml:"-" toml:"-"`
	IntervalRaw string        `yaml:"interval" toml:"interval"`
	Color       bool          `yaml:"color" toml:"color"`
	FramesPath  string        `yaml:"frames_path" toml:"frames_path"`
	Quiet       bool          `yaml:"quiet" toml:"quiet"` // summary only, no live frames
}

// DatabaseConfig holds run history storage settings. An empty path disables it.
type DatabaseConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Random obstacle range of the default 10x10 garden.
const (
	defaultMinObstacles = 10
	defaultMaxObstacles = 30
)

// Default returns the configuration of the original garden.
func Default() *Config {
	return &Config{
		Grid: GridConfig{Size: garden.DefaultSize},
		Gardeners: []GardenerConfig{
			{Name: "first", Speed: 10},
			{Name: "second", Speed: 10},
		},
		Obstacles: ObstaclesConfig{Min: defaultMinObstacles, Max: defaultMaxObstacles},
		Render:    RenderConfig{Color: true},
		Database:  DatabaseConfig{Path: filepath.Join(DataPath(), "runs.db")},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.Render.IntervalRaw != "" {
		d, err := time.ParseDuration(cfg.Render.IntervalRaw)
		if err != nil {
			return fmt.Errorf("parsing render.interval %q: %w", cfg.Render.IntervalRaw, err)
		}
		if d <= 0 {
			return fmt.Errorf("render.interval must be positive, got %s", d)
		}
		cfg.Render.Interval = d
	}
	return nil
}

// Validate checks every setting that would otherwise fail once gardeners run.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	size := c.Grid.Size
	if size < garden.MinSize || size > garden.MaxSize {
		return fmt.Errorf("grid.size: %w: %d (want %d..%d)", garden.ErrInvalidSize, size, garden.MinSize, garden.MaxSize)
	}

	if len(c.Gardeners) != 2 {
		return fmt.Errorf("gardeners: %w, got %d", ErrGardenerCount, len(c.Gardeners))
	}
	for i, g := range c.Gardeners {
		if strings.TrimSpace(g.Name) == "" {
			return fmt.Errorf("gardeners[%d].name is required", i)
		}
		if _, err := StepDuration(g.Speed); err != nil {
			return fmt.Errorf("gardeners[%d].speed: %w", i, err)
		}
	}
	if c.Gardeners[0].Name == c.Gardeners[1].Name {
		return fmt.Errorf("gardener names must differ, both are %q", c.Gardeners[0].Name)
	}

	if _, _, err := c.Routes(); err != nil {
		return err
	}

	if len(c.Obstacles.Layout) > 0 {
		if err := c.explicitLayout().Validate(size); err != nil {
			return fmt.Errorf("obstacles.layout: %w", err)
		}
	} else {
		o := c.Obstacles
		if o.Min < 0 || o.Max < o.Min || o.Max > size*size {
			return fmt.Errorf("obstacles: %w: %d..%d on a %dx%d grid", ErrInvalidObstacles, o.Min, o.Max, size, size)
		}
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}

	return nil
}

// Resize changes the grid size. A random obstacle range that is still the
// default, or that no longer fits, is scaled to 10%..30% of the cells.
// Explicit layouts are left alone.
func (c *Config) Resize(size int) {
	c.Grid.Size = size

	o := &c.Obstacles
	if len(o.Layout) > 0 {
		return
	}
	cells := size * size
	if (o.Min == defaultMinObstacles && o.Max == defaultMaxObstacles) || o.Max > cells {
		o.Min, o.Max = cells/10, cells*3/10
	}
}

// Routes returns both gardeners' routes: the configured ones where given,
// otherwise the default mirrored sweeps.
func (c *Config) Routes() (gardener.Route, gardener.Route, error) {
	defaults := [2]gardener.Route{}
	defaults[0], defaults[1] = gardener.DefaultRoutes(c.Grid.Size)

	var routes [2]gardener.Route
	for i := range routes {
		routes[i] = defaults[i]
		if i < len(c.Gardeners) && c.Gardeners[i].Route != nil {
			routes[i] = c.Gardeners[i].Route.route()
		}
		if err := routes[i].Validate(c.Grid.Size); err != nil {
			return gardener.Route{}, gardener.Route{}, fmt.Errorf("gardeners[%d].route: %w", i, err)
		}
	}
	return routes[0], routes[1], nil
}

func (rc *RouteConfig) route() gardener.Route {
	alternate := rc.Primary.Opposite()
	if rc.Alternate != nil {
		alternate = *rc.Alternate
	}

	return gardener.Route{
		Start:     garden.Position{X: rc.Start.X, Y: rc.Start.Y},
		End:       garden.Position{X: rc.End.X, Y: rc.End.Y},
		Primary:   rc.Primary,
		Turn:      rc.Turn,
		Alternate: alternate,
	}
}

// explicitLayout converts the configured obstacle list.
func (c *Config) explicitLayout() garden.Layout {
	layout := make(garden.Layout, 0, len(c.Obstacles.Layout))
	for _, o := range c.Obstacles.Layout {
		layout = append(layout, garden.Obstacle{
			Pos:  garden.Position{X: o.X, Y: o.Y},
			Kind: o.Kind,
		})
	}
	return layout
}

// ConfigPath returns the path to the config file.
// Priority: GARDEN_CONFIG env var > XDG_CONFIG_HOME/garden/garden.yaml > ~/.config/garden/garden.yaml
func ConfigPath() string {
	if envPath := os.Getenv("GARDEN_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "garden.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "garden", "garden.yaml")
}

// DataPath returns the path to the garden data directory.
// Priority: XDG_DATA_HOME/garden > ~/.local/share/garden
func DataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "garden")
}
