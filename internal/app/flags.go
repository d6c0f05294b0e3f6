package app

import (
	"flag"
	"fmt"
	"strings"
)

// Config represents the command-line parameters shared by the viewers.
type Config struct {
	Sim        string
	Scale      int
	TPS        int
	Seed       int64
	HUDWidth   int
	ConfigPath string
	Sets       KVList
}

// NewConfig returns a Config populated with sensible defaults.
func NewConfig() *Config {
	return &Config{Sim: "dla", Scale: 3, TPS: 30, Seed: 1337, HUDWidth: 240}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "simulation to run")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for simulation reset")
	fs.IntVar(&c.HUDWidth, "hud", c.HUDWidth, "width of the parameter panel in pixels (0 hides it)")
	fs.StringVar(&c.ConfigPath, "config", c.ConfigPath, "TOML file with simulation settings")
	fs.Var(&c.Sets, "set", "parameter override in key=value form (repeatable)")
}

// Options assembles the factory map from the config file path and the -set
// overrides. Later overrides of the same key win.
func (c *Config) Options() (map[string]string, error) {
	opts := map[string]string{}
	if c.ConfigPath != "" {
		opts["config"] = c.ConfigPath
	}
	for _, kv := range c.Sets {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid -set %q: want key=value", kv)
		}
		opts[key] = strings.TrimSpace(value)
	}
	return opts, nil
}

// KVList collects repeated key=value flags.
type KVList []string

func (l *KVList) String() string {
	return strings.Join(*l, ",")
}

func (l *KVList) Set(value string) error {
	*l = append(*l, value)
	return nil
}
