package sandbox

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type FloorKind string

const (
	FloorPlane FloorKind = "plane"
	FloorTiled FloorKind = "tiled"
	FloorNone  FloorKind = "none"
)

const (
	MinStrength = 1.0
	MaxStrength = 1000.0
	MinBounce   = 0.0
	MaxBounce   = 1.5
)

// Config holds everything the frame loop needs. Zero SpeedCap disables the
// velocity clamp.
type Config struct {
	Gravity        mgl64.Vec3
	FixedStep      float64
	MaxSubSteps    int
	Friction       float64
	Restitution    float64
	AllowSleep     bool
	Strength       float64
	HitThreshold   float64
	CullHeight     float64
	SpeedCap       float64
	RandomPalette  bool
	Floor          FloorKind
	FloorSize      float64
	CameraPosition mgl64.Vec3
	FovY           float64
	Aspect         float64
	InitialSphere  bool
	Seed           int64
}

func DefaultConfig() Config {
	return Config{
		Gravity:        mgl64.Vec3{0, -9.82, 0},
		FixedStep:      1.0 / 60,
		MaxSubSteps:    3,
		Friction:       0.1,
		Restitution:    0.75,
		AllowSleep:     true,
		Strength:       10,
		HitThreshold:   1.5,
		CullHeight:     -10,
		Floor:          FloorPlane,
		FloorSize:      10,
		CameraPosition: mgl64.Vec3{-3, 3, 3},
		FovY:           75,
		Aspect:         2,
		InitialSphere:  true,
		Seed:           1,
	}
}

func (c Config) Validate() error {
	switch {
	case !(c.FixedStep > 0) || math.IsInf(c.FixedStep, 0):
		return fmt.Errorf("%w: fixed step %v", ErrInvalidConfig, c.FixedStep)
	case c.MaxSubSteps < 1:
		return fmt.Errorf("%w: max sub-steps %d", ErrInvalidConfig, c.MaxSubSteps)
	case c.Strength < MinStrength || c.Strength > MaxStrength:
		return fmt.Errorf("%w: strength %v outside [%v, %v]", ErrInvalidConfig, c.Strength, MinStrength, MaxStrength)
	case c.Restitution < MinBounce || c.Restitution > MaxBounce:
		return fmt.Errorf("%w: restitution %v outside [%v, %v]", ErrInvalidConfig, c.Restitution, MinBounce, MaxBounce)
	case c.Friction < 0:
		return fmt.Errorf("%w: friction %v", ErrInvalidConfig, c.Friction)
	case c.SpeedCap < 0:
		return fmt.Errorf("%w: speed cap %v", ErrInvalidConfig, c.SpeedCap)
	case c.FovY <= 0 || c.FovY >= 180:
		return fmt.Errorf("%w: fov %v", ErrInvalidConfig, c.FovY)
	}
	switch c.Floor {
	case FloorPlane, FloorTiled, FloorNone:
	default:
		return fmt.Errorf("%w: floor %q", ErrInvalidConfig, c.Floor)
	}
	if c.Floor == FloorPlane && !(c.FloorSize > 0) {
		return fmt.Errorf("%w: floor size %v", ErrInvalidConfig, c.FloorSize)
	}
	return nil
}
