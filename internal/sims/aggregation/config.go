package aggregation

import (
	"fmt"
	"strconv"

	"dla/pkg/dla"

	"github.com/BurntSushi/toml"
)

// Config controls the aggregation world: raster, engine tunables, spawner
// geometry and host-side spawn following.
type Config struct {
	Width  int   `toml:"width"`
	Height int   `toml:"height"`
	Seed   int64 `toml:"seed"`

	// View is the half extent, in world units, covered by the raster.
	View float64 `toml:"view"`
	Mode string  `toml:"mode"`

	// MaxParticles stops growth once the cluster holds this many members; 0
	// grows forever.
	MaxParticles int `toml:"max_particles"`

	// SpawnFollow moves the spawner to the cluster radius plus SpawnMargin
	// after every stuck particle.
	SpawnFollow bool    `toml:"spawn_follow"`
	SpawnMargin float64 `toml:"spawn_margin"`

	// TickBudgetMS bounds the wall time of one brownian burst; the rest of
	// the burst carries over to the next step. 0 disables the bound.
	TickBudgetMS int `toml:"tick_budget_ms"`

	Engine  dla.Config  `toml:"engine"`
	Spawner dla.Spawner `toml:"spawner"`
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	eng := dla.DefaultConfig()
	eng.ParticleRadius = 0.01
	eng.SeedRadius = 0.01
	return Config{
		Width:        256,
		Height:       256,
		Seed:         1337,
		View:         1.5,
		Mode:         dla.ModeBrownian.String(),
		MaxParticles: 5000,
		SpawnFollow:  true,
		SpawnMargin:  0.1,
		TickBudgetMS: 50,
		Engine:       eng,
		Spawner: dla.Spawner{
			Radius: 0.2,
			Angle:  360,
		},
	}
}

// Validate reports the first setting that cannot build a world.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: raster %dx%d", dla.ErrInvalidArgument, c.Width, c.Height)
	}
	if !(c.View > 0) {
		return fmt.Errorf("%w: view %v must be positive", dla.ErrInvalidArgument, c.View)
	}
	if _, ok := dla.ParseMode(c.Mode); !ok {
		return fmt.Errorf("%w: unknown mode %q", dla.ErrInvalidArgument, c.Mode)
	}
	if c.MaxParticles < 0 || c.SpawnMargin < 0 || c.TickBudgetMS < 0 {
		return fmt.Errorf("%w: negative particle cap, spawn margin or tick budget", dla.ErrInvalidArgument)
	}
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	return c.Spawner.Validate()
}

// LoadConfig reads a TOML run file over the defaults. Unknown keys are errors.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	md, err := toml.DecodeFile(path, &c)
	if err != nil {
		return c, fmt.Errorf("load %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return c, fmt.Errorf("load %s: unknown keys %v", path, undecoded)
	}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("load %s: %w", path, err)
	}
	return c, nil
}

// FromMap populates the config from a string map (flag-style key/value
// pairs). A "config" entry names a TOML file loaded before the other keys;
// unreadable files and unparsable values are ignored.
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if path, ok := cfg["config"]; ok && path != "" {
		if loaded, err := LoadConfig(path); err == nil {
			c = loaded
		}
	}
	for k, v := range cfg {
		Apply(&c, k, v)
	}
	return c
}

// Apply sets a single key from its string form and reports whether the key
// was recognized and the value accepted.
func Apply(c *Config, key, value string) bool {
	switch key {
	case "w", "width":
		return setInt(&c.Width, value, 1)
	case "h", "height":
		return setInt(&c.Height, value, 1)
	case "seed":
		if v, err := strconv.ParseInt(value, 10, 64); err == nil {
			c.Seed = v
			return true
		}
	case "view":
		return setFloat(&c.View, value, true)
	case "mode":
		if _, ok := dla.ParseMode(value); ok {
			c.Mode = value
			return true
		}
	case "max_particles":
		return setInt(&c.MaxParticles, value, 0)
	case "spawn_follow":
		return setBool(&c.SpawnFollow, value)
	case "spawn_margin":
		return setFloat(&c.SpawnMargin, value, false)
	case "tick_budget_ms":
		return setInt(&c.TickBudgetMS, value, 0)
	case "growth_rate":
		return setInt(&c.Engine.GrowthRate, value, 1)
	case "max_walk_steps":
		return setInt(&c.Engine.MaxWalkSteps, value, 0)
	case "step_size":
		return setFloat(&c.Engine.StepSize, value, true)
	case "stick_tolerance":
		return setFloat(&c.Engine.StickTolerance, value, true)
	case "stickyness":
		if v, err := strconv.ParseFloat(value, 64); err == nil && v >= 0 && v <= 1 {
			c.Engine.Stickyness = v
			return true
		}
	case "particle_radius":
		return setFloat(&c.Engine.ParticleRadius, value, true)
	case "seed_radius":
		return setFloat(&c.Engine.SeedRadius, value, true)
	case "spawn_radius":
		return setFloat(&c.Spawner.Radius, value, true)
	case "spawn_direction":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			c.Spawner.Direction = v
			return true
		}
	case "spawn_angle":
		if v, err := strconv.ParseFloat(value, 64); err == nil && v > 0 && v <= 360 {
			c.Spawner.Angle = v
			return true
		}
	case "spawn_offset_inner":
		return setFloat(&c.Spawner.OffsetInner, value, false)
	case "spawn_clip_floor":
		return setBool(&c.Spawner.ClipFloor, value)
	}
	return false
}

func setInt(dst *int, value string, min int) bool {
	v, err := strconv.Atoi(value)
	if err != nil || v < min {
		return false
	}
	*dst = v
	return true
}

func setFloat(dst *float64, value string, positive bool) bool {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || !(v >= 0) || (positive && v == 0) {
		return false
	}
	*dst = v
	return true
}

func setBool(dst *bool, value string) bool {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	*dst = v
	return true
}
