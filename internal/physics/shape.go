package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type ShapeKind int

const (
	ShapeSphere ShapeKind = iota
	ShapeBox
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeSphere:
		return "sphere"
	case ShapeBox:
		return "box"
	}
	return "unknown"
}

// Shape is a convex collision volume centred on the body origin.
type Shape interface {
	Kind() ShapeKind
	// LocalInertia returns the diagonal of the inertia tensor in body space.
	LocalInertia(mass float64) mgl64.Vec3
	// HalfExtentsAt returns the world-space AABB half extents under rotation q.
	HalfExtentsAt(q mgl64.Quat) mgl64.Vec3
	BoundingRadius() float64
}

type Sphere struct {
	Radius float64
}

func NewSphere(radius float64) *Sphere { return &Sphere{Radius: radius} }

func (s *Sphere) Kind() ShapeKind { return ShapeSphere }

func (s *Sphere) LocalInertia(mass float64) mgl64.Vec3 {
	i := 2.0 / 5.0 * mass * s.Radius * s.Radius
	return mgl64.Vec3{i, i, i}
}

func (s *Sphere) HalfExtentsAt(mgl64.Quat) mgl64.Vec3 {
	return mgl64.Vec3{s.Radius, s.Radius, s.Radius}
}

func (s *Sphere) BoundingRadius() float64 { return s.Radius }

// Box is an oriented box described by its half extents.
type Box struct {
	HalfExtents mgl64.Vec3
}

func NewBox(halfExtents mgl64.Vec3) *Box { return &Box{HalfExtents: halfExtents} }

func (b *Box) Kind() ShapeKind { return ShapeBox }

func (b *Box) LocalInertia(mass float64) mgl64.Vec3 {
	x, y, z := 2*b.HalfExtents.X(), 2*b.HalfExtents.Y(), 2*b.HalfExtents.Z()
	return mgl64.Vec3{
		mass / 12 * (y*y + z*z),
		mass / 12 * (x*x + z*z),
		mass / 12 * (x*x + y*y),
	}
}

func (b *Box) HalfExtentsAt(q mgl64.Quat) mgl64.Vec3 {
	axes := boxAxes(q)
	var out mgl64.Vec3
	for i := 0; i < 3; i++ {
		out[i] = math.Abs(axes[0][i])*b.HalfExtents[0] +
			math.Abs(axes[1][i])*b.HalfExtents[1] +
			math.Abs(axes[2][i])*b.HalfExtents[2]
	}
	return out
}

func (b *Box) BoundingRadius() float64 { return b.HalfExtents.Len() }

// boxAxes returns the three world-space unit axes of a frame rotated by q.
func boxAxes(q mgl64.Quat) [3]mgl64.Vec3 {
	return [3]mgl64.Vec3{
		q.Rotate(mgl64.Vec3{1, 0, 0}),
		q.Rotate(mgl64.Vec3{0, 1, 0}),
		q.Rotate(mgl64.Vec3{0, 0, 1}),
	}
}
