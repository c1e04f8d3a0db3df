package metrics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/rigidbox/internal/sandbox"
)

// Metric folds a stream of frames into a single number.
type Metric interface {
	Name() string
	Observe(f sandbox.Frame)
	Value() float64
	Reset()
}

// Set feeds every frame to each of its metrics. It satisfies
// sandbox.Observer.
type Set struct {
	metrics []Metric
}

func NewSet(ms ...Metric) *Set {
	return &Set{metrics: ms}
}

func (s *Set) Add(m Metric) { s.metrics = append(s.metrics, m) }

func (s *Set) OnFrame(f sandbox.Frame) {
	for _, m := range s.metrics {
		m.Observe(f)
	}
}

func (s *Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s *Set) Reset() {
	for _, m := range s.metrics {
		m.Reset()
	}
}

// Default is the set the CLI records with every run.
func Default(gravity mgl64.Vec3, speedLimit float64) *Set {
	return NewSet(
		NewEnergy(gravity),
		NewEnergyLoss(gravity),
		NewStability(speedLimit),
		NewActivity(),
	)
}
