// ABOUTME: Gardener speed sources and conversion of speeds into step durations
// ABOUTME: Also builds the obstacle layout a run starts from

package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/2389/gardeners/internal/garden"
)

// MaxSpeed is the fastest supported speed, one square per microsecond.
const MaxSpeed = 1_000_000

// ErrInvalidSpeed indicates a speed that is not a positive number up to MaxSpeed.
var ErrInvalidSpeed = errors.New("invalid speed")

// StepDuration converts squares per second into the pass-through delay.
// Tending a square takes twice as long.
func StepDuration(speed float64) (time.Duration, error) {
	if !(speed > 0) || speed > MaxSpeed {
		return 0, fmt.Errorf("%w: %v (want 0 < speed <= %d)", ErrInvalidSpeed, speed, MaxSpeed)
	}
	return time.Duration(int64(MaxSpeed/speed)) * time.Microsecond, nil
}

// ReadSpeeds reads two whitespace separated speeds.
func ReadSpeeds(r io.Reader) (float64, float64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	var speeds [2]float64
	for i := range speeds {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return 0, 0, fmt.Errorf("reading speeds: %w", err)
			}
			return 0, 0, fmt.Errorf("reading speeds: expected 2 values, got %d", i)
		}
		v, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSpeed, scanner.Text())
		}
		if _, err := StepDuration(v); err != nil {
			return 0, 0, err
		}
		speeds[i] = v
	}
	return speeds[0], speeds[1], nil
}

// RandomSpeeds draws two whole speeds from 1..100.
func RandomSpeeds(rng *rand.Rand) (float64, float64) {
	return float64(1 + rng.IntN(100)), float64(1 + rng.IntN(100))
}

// SetSpeeds overrides both gardeners' speeds.
func (c *Config) SetSpeeds(first, second float64) {
	c.Gardeners[0].Speed = first
	c.Gardeners[1].Speed = second
}

// StepDurations returns both gardeners' pass-through delays.
func (c *Config) StepDurations() (time.Duration, time.Duration, error) {
	first, err := StepDuration(c.Gardeners[0].Speed)
	if err != nil {
		return 0, 0, fmt.Errorf("gardeners[0]: %w", err)
	}
	second, err := StepDuration(c.Gardeners[1].Speed)
	if err != nil {
		return 0, 0, fmt.Errorf("gardeners[1]: %w", err)
	}
	return first, second, nil
}

// Layout returns the configured obstacles, or a random layout drawn from rng
// when none are listed.
func (c *Config) Layout(rng *rand.Rand) (garden.Layout, error) {
	if len(c.Obstacles.Layout) > 0 {
		return c.explicitLayout(), nil
	}
	return garden.RandomLayout(rng, c.Grid.Size, c.Obstacles.Min, c.Obstacles.Max)
}
