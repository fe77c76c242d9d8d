package config

import "sort"

var Presets = map[string]map[string]*Config{
	"inverse": {
		"baseline": preset(func(c *Config) {
			c.Experiment = "inverse"
		}),
		"standard": preset(func(c *Config) {
			c.Experiment = "inverse"
			c.Stencil = "standard"
		}),
		"small": preset(func(c *Config) {
			c.Experiment = "inverse"
			c.N = 16
		}),
	},
	"conditioning": {
		"baseline": preset(func(c *Config) {
			c.Experiment = "conditioning"
			c.N = 40
			c.NumSV = 200
		}),
		"small": preset(func(c *Config) {
			c.Experiment = "conditioning"
			c.N = 12
			c.NumSV = 10
		}),
	},
	"spectrum": {
		"baseline": preset(func(c *Config) {
			c.Experiment = "spectrum"
			c.NumModes = 300
		}),
		"small": preset(func(c *Config) {
			c.Experiment = "spectrum"
			c.N = 12
			c.NumModes = 144
		}),
	},
	"boundary": {
		"baseline": preset(func(c *Config) {
			c.Experiment = "boundary"
			c.N = 100
			c.Dim = 1
			c.NoiseLevel = 0
		}),
		"noisy": preset(func(c *Config) {
			c.Experiment = "boundary"
			c.N = 100
			c.Dim = 1
			c.NoiseLevel = 1e-3
		}),
	},
	"lambda-sweep": {
		"baseline": preset(func(c *Config) {
			c.Experiment = "lambda-sweep"
			c.Stencil = "standard"
		}),
	},
}

func preset(apply func(*Config)) *Config {
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(experiment, name string) *Config {
	experimentPresets, ok := Presets[experiment]
	if !ok {
		return nil
	}
	cfg, ok := experimentPresets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(experiment string) []string {
	experimentPresets, ok := Presets[experiment]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(experimentPresets))
	for name := range experimentPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
