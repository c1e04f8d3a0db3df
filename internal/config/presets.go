package config

import (
	"sort"

	"github.com/san-kum/rigidbox/internal/sandbox"
)

type profile struct {
	description string
	apply       func(*Config)
}

var profiles = map[string]profile{
	"classic": {
		description: "fixed materials, single 10x10 floor, no speed limit",
		apply:       func(*Config) {},
	},
	"arcade": {
		description: "random palette, open box of floor panels, speed capped at 10",
		apply: func(c *Config) {
			c.Scene.RandomPalette = true
			c.Scene.Floor = string(sandbox.FloorTiled)
			c.Lifecycle.SpeedCap = 10
		},
	},
	"zero-g": {
		description: "no gravity and no floor; objects drift until pushed",
		apply: func(c *Config) {
			c.Physics.Gravity = [3]float64{}
			c.Physics.AllowSleep = false
			c.Scene.Floor = string(sandbox.FloorNone)
		},
	},
}

// GetProfile returns a fresh config for the named profile, or nil.
func GetProfile(name string) *Config {
	p, ok := profiles[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Profile = name
	p.apply(cfg)
	return cfg
}

func ListProfiles() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ProfileDescription(name string) string {
	return profiles[name].description
}
