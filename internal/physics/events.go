package physics

import "github.com/go-gl/mathgl/mgl64"

type ListenerID uint64

type CollideFunc func(CollideEvent)

// Contact is a single contact point between two bodies. Normal points from A
// towards B. Depth is the overlap along the normal and is negative while the
// shapes are still apart.
type Contact struct {
	A, B   *Body
	Point  mgl64.Vec3
	Normal mgl64.Vec3
	Depth  float64
}

// ImpactVelocityAlongNormal returns the closing speed of the two bodies at the
// contact point, measured along the normal. Positive values mean approach.
func (c Contact) ImpactVelocityAlongNormal() float64 {
	rel := c.A.VelocityAt(c.Point).Sub(c.B.VelocityAt(c.Point))
	return c.Normal.Dot(rel)
}

// touches reports whether the shapes overlap, sit within the resting slop
// of each other or close their gap within dt.
func (c Contact) touches(dt float64) bool {
	return c.Depth >= -penetrationSlop || c.ImpactVelocityAlongNormal()*dt >= -c.Depth
}

// CollideEvent is delivered to both bodies of a new contact pair. Body is the
// receiving body and Target the other one.
type CollideEvent struct {
	Body    *Body
	Target  *Body
	Contact Contact
}
