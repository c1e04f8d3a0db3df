package metrics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/rigidbox/internal/sandbox"
)

// FrameEnergy is the kinetic plus potential energy of every object in f,
// with potential measured from the origin along gravity.
func FrameEnergy(f sandbox.Frame, gravity mgl64.Vec3) float64 {
	total := 0.0
	for _, o := range f.Objects {
		v := mgl64.Vec3(o.Velocity)
		p := mgl64.Vec3(o.Position)
		total += 0.5*o.Mass*v.Dot(v) - o.Mass*gravity.Dot(p)
	}
	return total
}

// Energy is the mean total energy per frame.
type Energy struct {
	name        string
	gravity     mgl64.Vec3
	samples     int
	totalEnergy float64
}

func NewEnergy(gravity mgl64.Vec3) *Energy {
	return &Energy{
		name:    "energy",
		gravity: gravity,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(f sandbox.Frame) {
	e.totalEnergy += FrameEnergy(f, e.gravity)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyLoss is the share of the peak frame energy that has been dissipated
// by the latest frame. Spawns raise the peak, so it tracks settling rather
// than conservation.
type EnergyLoss struct {
	name    string
	gravity mgl64.Vec3
	peak    float64
	current float64
	samples int
}

func NewEnergyLoss(gravity mgl64.Vec3) *EnergyLoss {
	return &EnergyLoss{
		name:    "energy_loss",
		gravity: gravity,
	}
}

func (e *EnergyLoss) Name() string { return e.name }

func (e *EnergyLoss) Observe(f sandbox.Frame) {
	energy := FrameEnergy(f, e.gravity)
	if e.samples == 0 || energy > e.peak {
		e.peak = energy
	}
	e.current = energy
	e.samples++
}

func (e *EnergyLoss) Value() float64 {
	if e.peak == 0 {
		return 0
	}
	return (e.peak - e.current) / math.Abs(e.peak)
}

func (e *EnergyLoss) Reset() {
	e.peak = 0
	e.current = 0
	e.samples = 0
}
