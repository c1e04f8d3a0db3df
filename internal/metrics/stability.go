package metrics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/rigidbox/internal/sandbox"
)

// Stability is the fraction of frames in which no object moves faster than
// the threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(f sandbox.Frame) {
	s.samples++
	for _, o := range f.Objects {
		if mgl64.Vec3(o.Velocity).Len() > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
