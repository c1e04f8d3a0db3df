package config

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/rigidbox/internal/sandbox"
)

const (
	DefaultFixedStep    = 1.0 / 60
	DefaultMaxSubSteps  = 3
	DefaultFriction     = 0.1
	DefaultRestitution  = 0.75
	DefaultStrength     = 10.0
	DefaultHitThreshold = 1.5
	DefaultCullHeight   = -10.0
	DefaultFloorSize    = 10.0
	DefaultFOV          = 75.0
)

// ErrInvalidConfig is the sandbox's sentinel; both layers report through it.
var ErrInvalidConfig = sandbox.ErrInvalidConfig

type Config struct {
	Profile     string            `yaml:"profile"`
	Seed        int64             `yaml:"seed"`
	Physics     PhysicsConfig     `yaml:"physics"`
	Interaction InteractionConfig `yaml:"interaction"`
	Lifecycle   LifecycleConfig   `yaml:"lifecycle"`
	Scene       SceneConfig       `yaml:"scene"`
	Spawn       SpawnConfig       `yaml:"spawn"`
}

type PhysicsConfig struct {
	Gravity     [3]float64 `yaml:"gravity,flow"`
	FixedStep   float64    `yaml:"fixed_step"`
	MaxSubSteps int        `yaml:"max_sub_steps"`
	Friction    float64    `yaml:"friction"`
	Restitution float64    `yaml:"restitution"`
	AllowSleep  bool       `yaml:"allow_sleep"`
}

type InteractionConfig struct {
	Strength     float64 `yaml:"strength"`
	HitThreshold float64 `yaml:"hit_threshold"`
}

type LifecycleConfig struct {
	CullHeight float64 `yaml:"cull_height"`
	SpeedCap   float64 `yaml:"speed_cap"`
}

type SceneConfig struct {
	RandomPalette  bool       `yaml:"random_palette"`
	Floor          string     `yaml:"floor"`
	FloorSize      float64    `yaml:"floor_size"`
	CameraPosition [3]float64 `yaml:"camera_position,flow"`
	FOV            float64    `yaml:"fov"`
}

type SpawnConfig struct {
	InitialSphere bool `yaml:"initial_sphere"`
}

// Tunables is the subset of settings that can change while the sandbox runs.
type Tunables struct {
	Strength    float64
	Restitution float64
	SpeedCap    float64
}

func DefaultConfig() *Config {
	return &Config{
		Profile: "classic",
		Seed:    1,
		Physics: PhysicsConfig{
			Gravity:     [3]float64{0, -9.82, 0},
			FixedStep:   DefaultFixedStep,
			MaxSubSteps: DefaultMaxSubSteps,
			Friction:    DefaultFriction,
			Restitution: DefaultRestitution,
			AllowSleep:  true,
		},
		Interaction: InteractionConfig{
			Strength:     DefaultStrength,
			HitThreshold: DefaultHitThreshold,
		},
		Lifecycle: LifecycleConfig{
			CullHeight: DefaultCullHeight,
		},
		Scene: SceneConfig{
			Floor:          string(sandbox.FloorPlane),
			FloorSize:      DefaultFloorSize,
			CameraPosition: [3]float64{-3, 3, 3},
			FOV:            DefaultFOV,
		},
		Spawn: SpawnConfig{InitialSphere: true},
	}
}

// Load reads a YAML config. Fields the file leaves out come from the profile
// it names, or from DefaultConfig when it names none.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var head struct {
		Profile string `yaml:"profile"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if head.Profile != "" {
		if cfg = GetProfile(head.Profile); cfg == nil {
			return nil, fmt.Errorf("%w: unknown profile %q", ErrInvalidConfig, head.Profile)
		}
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Profile != "" && GetProfile(c.Profile) == nil {
		return fmt.Errorf("%w: unknown profile %q", ErrInvalidConfig, c.Profile)
	}
	return c.Sandbox().Validate()
}

// Sandbox converts the file layout into the sandbox's flat settings.
func (c *Config) Sandbox() sandbox.Config {
	return sandbox.Config{
		Gravity:        mgl64.Vec3(c.Physics.Gravity),
		FixedStep:      c.Physics.FixedStep,
		MaxSubSteps:    c.Physics.MaxSubSteps,
		Friction:       c.Physics.Friction,
		Restitution:    c.Physics.Restitution,
		AllowSleep:     c.Physics.AllowSleep,
		Strength:       c.Interaction.Strength,
		HitThreshold:   c.Interaction.HitThreshold,
		CullHeight:     c.Lifecycle.CullHeight,
		SpeedCap:       c.Lifecycle.SpeedCap,
		RandomPalette:  c.Scene.RandomPalette,
		Floor:          sandbox.FloorKind(c.Scene.Floor),
		FloorSize:      c.Scene.FloorSize,
		CameraPosition: mgl64.Vec3(c.Scene.CameraPosition),
		FovY:           c.Scene.FOV,
		Aspect:         2,
		InitialSphere:  c.Spawn.InitialSphere,
		Seed:           c.Seed,
	}
}

func (c *Config) Tunables() Tunables {
	return Tunables{
		Strength:    c.Interaction.Strength,
		Restitution: c.Physics.Restitution,
		SpeedCap:    c.Lifecycle.SpeedCap,
	}
}
