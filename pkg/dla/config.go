package dla

import "fmt"

// Mode selects how new particles reach the cluster.
type Mode int

const (
	// ModeBrownian walks each particle until it sticks, escapes or is rejected.
	ModeBrownian Mode = iota
	// ModeNearest teleports each particle onto the nearest cluster member.
	ModeNearest
)

// String returns the mode identifier used in config files and flags.
func (m Mode) String() string {
	switch m {
	case ModeNearest:
		return "nearest"
	default:
		return "brownian"
	}
}

// ParseMode maps a mode identifier back to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "brownian":
		return ModeBrownian, true
	case "nearest":
		return ModeNearest, true
	}
	return ModeBrownian, false
}

// Config holds the growth tunables. It is passed by value into the engine so
// particle and cluster math never reads shared globals.
type Config struct {
	Mode Mode `toml:"-"`

	// StepSize scales a random-walk move relative to the particle radius.
	StepSize float64 `toml:"step_size"`
	// StickTolerance widens the squared contact distance.
	StickTolerance float64 `toml:"stick_tolerance"`
	// Stickyness is the probability that a detected contact is honored.
	Stickyness float64 `toml:"stickyness"`
	// ParticleRadius is the radius of newly spawned particles.
	ParticleRadius float64 `toml:"particle_radius"`
	// MaxWalkSteps caps a single walk; 0 disables the cap.
	MaxWalkSteps int `toml:"max_walk_steps"`
	// GrowthRate is the number of completions per Grow burst.
	GrowthRate int `toml:"growth_rate"`

	SeedX      float64 `toml:"seed_x"`
	SeedY      float64 `toml:"seed_y"`
	SeedRadius float64 `toml:"seed_radius"`
}

// DefaultConfig returns the standard tunables.
func DefaultConfig() Config {
	return Config{
		Mode:           ModeBrownian,
		StepSize:       1,
		StickTolerance: 2,
		Stickyness:     1,
		ParticleRadius: 0.05,
		MaxWalkSteps:   0,
		GrowthRate:     10,
		SeedRadius:     0.05,
	}
}

// Validate reports the first tunable that cannot drive a simulation.
func (c Config) Validate() error {
	switch {
	case c.StepSize <= 0:
		return fmt.Errorf("%w: step size %v must be positive", ErrInvalidArgument, c.StepSize)
	case c.StickTolerance <= 0:
		return fmt.Errorf("%w: stick tolerance %v must be positive", ErrInvalidArgument, c.StickTolerance)
	case c.Stickyness < 0 || c.Stickyness > 1:
		return fmt.Errorf("%w: stickyness %v outside [0, 1]", ErrInvalidArgument, c.Stickyness)
	case !(c.ParticleRadius > 0):
		return fmt.Errorf("%w: particle radius %v must be positive", ErrInvalidArgument, c.ParticleRadius)
	case !(c.SeedRadius > 0):
		return fmt.Errorf("%w: seed radius %v must be positive", ErrInvalidArgument, c.SeedRadius)
	case c.MaxWalkSteps < 0:
		return fmt.Errorf("%w: max walk steps %d is negative", ErrInvalidArgument, c.MaxWalkSteps)
	case c.GrowthRate < 0:
		return fmt.Errorf("%w: growth rate %d is negative", ErrInvalidArgument, c.GrowthRate)
	}
	return nil
}
