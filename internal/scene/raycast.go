package scene

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

func (r Ray) At(t float64) mgl64.Vec3 { return r.Origin.Add(r.Direction.Mul(t)) }

type Intersection struct {
	Mesh     *Mesh
	Distance float64
	Point    mgl64.Vec3
}

// IntersectObjects tests the ray against every mesh and returns the hits
// ordered from nearest to farthest.
func IntersectObjects(r Ray, meshes []*Mesh) []Intersection {
	var hits []Intersection
	for _, m := range meshes {
		if t, ok := intersectMesh(r, m); ok {
			hits = append(hits, Intersection{Mesh: m, Distance: t, Point: r.At(t)})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

// intersectMesh moves the ray into the mesh's local frame, where the geometry
// is a unit primitive. The ray parameter is preserved by the affine map, so
// the returned t is a world distance along the normalized direction.
func intersectMesh(r Ray, m *Mesh) (float64, bool) {
	s := m.Scale
	if s.X() == 0 || s.Y() == 0 || s.Z() == 0 {
		return 0, false
	}
	inv := m.Quaternion.Conjugate()
	o := inv.Rotate(r.Origin.Sub(m.Position))
	d := inv.Rotate(r.Direction)
	o = mgl64.Vec3{o.X() / s.X(), o.Y() / s.Y(), o.Z() / s.Z()}
	d = mgl64.Vec3{d.X() / s.X(), d.Y() / s.Y(), d.Z() / s.Z()}

	switch m.Geometry.Kind {
	case GeometrySphere:
		return raySphere(o, d, 1)
	case GeometryBox:
		return rayBox(o, d, mgl64.Vec3{0.5, 0.5, 0.5})
	case GeometryPlane:
		return rayPlane(o, d)
	}
	return 0, false
}

func raySphere(o, d mgl64.Vec3, radius float64) (float64, bool) {
	a := d.Dot(d)
	b := 2 * o.Dot(d)
	c := o.Dot(o) - radius*radius
	disc := b*b - 4*a*c
	if disc < 0 || a == 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := (-b - sq) / (2 * a)
	if t < 0 {
		t = (-b + sq) / (2 * a)
	}
	return t, t >= 0
}

// rayBox is the slab test against an origin-centred box.
func rayBox(o, d, h mgl64.Vec3) (float64, bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)
	for i := 0; i < 3; i++ {
		if d[i] == 0 {
			if o[i] < -h[i] || o[i] > h[i] {
				return 0, false
			}
			continue
		}
		t1 := (-h[i] - o[i]) / d[i]
		t2 := (h[i] - o[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

func rayPlane(o, d mgl64.Vec3) (float64, bool) {
	if d.Z() == 0 {
		return 0, false
	}
	t := -o.Z() / d.Z()
	if t < 0 {
		return 0, false
	}
	p := o.Add(d.Mul(t))
	if math.Abs(p.X()) > 0.5 || math.Abs(p.Y()) > 0.5 {
		return 0, false
	}
	return t, true
}
