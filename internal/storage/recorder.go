package storage

import (
	"math"

	"github.com/san-kum/rigidbox/internal/sandbox"
)

// Sample is one object's state in a recorded frame.
type Sample struct {
	Tick    int
	Elapsed float64
	Object  sandbox.ObjectState
}

// Recorder is a sandbox observer that keeps every Nth frame in memory.
type Recorder struct {
	every   int
	frames  int
	culled  int
	peak    int
	samples []Sample
	counts  []float64
	lowest  float64
}

func NewRecorder(every int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{every: every, lowest: math.Inf(1)}
}

func (r *Recorder) OnFrame(f sandbox.Frame) {
	r.frames++
	r.culled += f.Culled
	if n := len(f.Objects); n > r.peak {
		r.peak = n
	}
	if (f.Tick-1)%r.every != 0 {
		return
	}
	r.counts = append(r.counts, float64(len(f.Objects)))
	for _, o := range f.Objects {
		r.samples = append(r.samples, Sample{Tick: f.Tick, Elapsed: f.Elapsed, Object: o})
		r.lowest = math.Min(r.lowest, o.Position[1])
	}
}

func (r *Recorder) Frames() int       { return r.frames }
func (r *Recorder) Samples() []Sample { return r.samples }
func (r *Recorder) Counts() []float64 { return r.counts }

// Stats summarizes the run for metadata.json.
func (r *Recorder) Stats() map[string]float64 {
	stats := map[string]float64{
		"frames":       float64(r.frames),
		"culled":       float64(r.culled),
		"peak_objects": float64(r.peak),
		"samples":      float64(len(r.samples)),
	}
	if !math.IsInf(r.lowest, 1) {
		stats["lowest_y"] = r.lowest
	}
	return stats
}
