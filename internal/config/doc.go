// Package config handles configuration loading for the garden simulation.
//
// # Overview
//
// Configuration is loaded from YAML or TOML files (chosen by extension) with
// environment variable expansion. Anything not set in the file keeps the
// value from Default, which reproduces the original garden: a 10x10 grid and
// 10 to 30 random rocks and ponds.
//
// # Configuration File
//
// Default location:
//
//  1. Path from GARDEN_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/garden/garden.yaml
//  3. ~/.config/garden/garden.yaml
//
// # Example
//
//	grid:
//	  size: 10
//
//	gardeners:
//	  - name: "first"
//	    speed: 2.5          # squares per second
//	  - name: "second"
//	    speed: 4
//	    route:              # optional, defaults to the mirrored sweep
//	      start: {x: 9, y: 0}
//	      end: {x: 0, y: 0}
//	      primary: "up"
//	      turn: "left"
//	      alternate: "down"
//
//	obstacles:
//	  seed: 42              # 0 picks a seed at startup
//	  min: 10
//	  max: 30
//	  layout:               # explicit layout replaces random placement
//	    - {x: 2, y: 2, kind: "rock"}
//
//	render:
//	  interval: "100ms"     # defaults to the faster gardener's step
//	  color: true
//	  frames_path: ""       # also write plain frames to this file
//	  quiet: false          # print only the final summary
//
//	database:
//	  path: "${HOME}/.local/share/garden/runs.db"
//
//	logging:
//	  level: "info"         # debug, info, warn, error
//	  format: "text"        # text, json
//
// # Speeds
//
// Speeds are squares per second. A gardener passing through a square waits
// 1_000_000/speed microseconds and tending takes twice as long. ReadSpeeds
// reads the two speeds from a file or stdin, RandomSpeeds draws them from
// 1..100.
//
// # Validation
//
// Validate rejects bad configuration before any gardener starts:
//
//   - grid size outside 2..50
//   - anything other than two gardeners, or duplicate names
//   - speeds that are not positive or exceed 1e6
//   - obstacle ranges that do not fit the grid, overlapping layouts
//   - routes that leave the grid or never reach their end
package config
