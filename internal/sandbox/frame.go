package sandbox

import "github.com/san-kum/rigidbox/internal/scene"

// ObjectState is the visible state of one tracked object after a tick.
type ObjectState struct {
	ID          int        `json:"id"`
	Shape       string     `json:"shape"`
	Position    [3]float64 `json:"position"`
	Quaternion  [4]float64 `json:"quaternion"`
	Scale       [3]float64 `json:"scale"`
	Velocity    [3]float64 `json:"velocity"`
	Mass        float64    `json:"mass"`
	Highlighted bool       `json:"highlighted"`
	Sleeping    bool       `json:"sleeping"`
}

// Frame summarizes one call to Tick.
type Frame struct {
	Tick     int           `json:"tick"`
	Elapsed  float64       `json:"elapsed"`
	Delta    float64       `json:"delta"`
	Substeps int           `json:"substeps"`
	Culled   int           `json:"culled"`
	Hovered  int           `json:"hovered"`
	Objects  []ObjectState `json:"objects"`
}

// Observer receives every frame after rendering. Observers run on the tick
// goroutine and must not block.
type Observer interface {
	OnFrame(Frame)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(Frame)

func (f ObserverFunc) OnFrame(fr Frame) { f(fr) }

func objectState(o *TrackedObject) ObjectState {
	m := o.Mesh
	q := m.Quaternion
	return ObjectState{
		ID:          o.Body.ID,
		Shape:       o.Body.Shape.Kind().String(),
		Position:    [3]float64(m.Position),
		Quaternion:  [4]float64{q.X(), q.Y(), q.Z(), q.W},
		Scale:       [3]float64(m.Scale),
		Velocity:    [3]float64(o.Body.Velocity),
		Mass:        o.Body.Mass,
		Highlighted: m.Material != nil && m.Material.Tag == scene.TagHighlighted,
		Sleeping:    o.Body.IsSleeping(),
	}
}
