package extrapolate

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("extrapolate: invalid config")

// Config controls both queries.
type Config struct {
	// Aggregate settings
	Presses      int64 `json:"presses"`       // Presses summed by Aggregate (default: 1000)
	DetectCycles bool  `json:"detect_cycles"` // Finish the horizon from a detected state cycle (default: true)

	// Minimum-presses settings
	MaxPresses    int64 `json:"max_presses"`    // Upper bound on presses per watcher, direct run or tracked aggregate states (default: 1<<22)
	VerifyPeriods bool  `json:"verify_periods"` // Require the second firing at exactly twice the first (default: true)
	AllowFallback bool  `json:"allow_fallback"` // Simulate directly when the network has no watchable shape (default: true)
	Parallel      bool  `json:"parallel"`       // Run watchers concurrently (default: true)
}

// DefaultMaxPresses bounds every open-ended run.
const DefaultMaxPresses = 1 << 22

// DefaultConfig returns a Config with the usual settings.
func DefaultConfig() *Config {
	return &Config{
		Presses:       1000,
		DetectCycles:  true,
		MaxPresses:    DefaultMaxPresses,
		VerifyPeriods: true,
		AllowFallback: true,
		Parallel:      true,
	}
}

// Validate checks the configuration, filling in MaxPresses when unset.
func (c *Config) Validate() error {
	if c.Presses < 0 {
		return fmt.Errorf("%w: presses must not be negative, got %d", ErrInvalidConfig, c.Presses)
	}
	if c.MaxPresses == 0 {
		c.MaxPresses = DefaultMaxPresses
	}
	if c.MaxPresses < 0 {
		return fmt.Errorf("%w: max presses must be positive, got %d", ErrInvalidConfig, c.MaxPresses)
	}
	return nil
}
