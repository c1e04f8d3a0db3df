package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rigidbox/internal/scene"
)

type Edge struct {
	Start, End mgl64.Vec3
}

// Wireframe is a list of world-space edges sharing one colour.
type Wireframe struct {
	Edges []Edge
	Color string
}

func (w *Wireframe) AddEdge(s, e mgl64.Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }

var cubeEdges = [12][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}, {4, 5}, {5, 6}, {6, 7}, {7, 4}, {0, 4}, {1, 5}, {2, 6}, {3, 7}}

// MeshWireframe builds the world-space outline of a mesh from its unit
// geometry and transform.
func MeshWireframe(m *scene.Mesh) *Wireframe {
	w := &Wireframe{}
	if m.Material != nil {
		w.Color = m.Material.Color
	}
	xf := m.Transform()
	tr := func(p mgl64.Vec3) mgl64.Vec3 { return mgl64.TransformCoordinate(p, xf) }

	switch m.Geometry.Kind {
	case scene.GeometryBox:
		s := 0.5
		v := [8]mgl64.Vec3{{-s, -s, -s}, {s, -s, -s}, {s, s, -s}, {-s, s, -s}, {-s, -s, s}, {s, -s, s}, {s, s, s}, {-s, s, s}}
		for _, e := range cubeEdges {
			w.AddEdge(tr(v[e[0]]), tr(v[e[1]]))
		}
	case scene.GeometrySphere:
		n := m.Geometry.Segments
		if n < 8 {
			n = 8
		}
		// three great circles show the orientation as the sphere rolls
		for axis := 0; axis < 3; axis++ {
			prev := tr(circlePoint(axis, 0))
			for i := 1; i <= n; i++ {
				next := tr(circlePoint(axis, 2*math.Pi*float64(i)/float64(n)))
				w.AddEdge(prev, next)
				prev = next
			}
		}
	case scene.GeometryPlane:
		n := m.Geometry.Segments
		if n < 1 {
			n = 1
		}
		for i := 0; i <= n; i++ {
			f := -0.5 + float64(i)/float64(n)
			w.AddEdge(tr(mgl64.Vec3{f, -0.5, 0}), tr(mgl64.Vec3{f, 0.5, 0}))
			w.AddEdge(tr(mgl64.Vec3{-0.5, f, 0}), tr(mgl64.Vec3{0.5, f, 0}))
		}
	}
	return w
}

func circlePoint(axis int, a float64) mgl64.Vec3 {
	c, s := math.Cos(a), math.Sin(a)
	switch axis {
	case 0:
		return mgl64.Vec3{0, c, s}
	case 1:
		return mgl64.Vec3{c, 0, s}
	}
	return mgl64.Vec3{c, s, 0}
}
