package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type BodyType int

const (
	Dynamic BodyType = iota
	Static
)

type SleepState int

const (
	Awake SleepState = iota
	Sleepy
	Sleeping
)

// BodyOptions describes a body at construction time. Mass 0 makes it static.
type BodyOptions struct {
	Mass       float64
	Position   mgl64.Vec3
	Quaternion mgl64.Quat
	Shape      Shape
}

// Body is a rigid body. Position and Quaternion are the simulation's source
// of truth; callers may read them freely and write them between steps.
type Body struct {
	ID              int
	Type            BodyType
	Mass            float64
	Shape           Shape
	Position        mgl64.Vec3
	Quaternion      mgl64.Quat
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
	LinearDamping   float64
	AngularDamping  float64
	SleepState      SleepState

	invMass       float64
	invInertia    mgl64.Vec3
	sleepyTime    float64
	margin        float64
	world         *World
	nextListener  ListenerID
	listeners     map[ListenerID]CollideFunc
	listenerOrder []ListenerID
}

func NewBody(opts BodyOptions) (*Body, error) {
	if opts.Shape == nil {
		return nil, ErrNoShape
	}
	if opts.Mass < 0 || math.IsNaN(opts.Mass) || math.IsInf(opts.Mass, 0) {
		return nil, ErrInvalidMass
	}
	q := opts.Quaternion
	if q == (mgl64.Quat{}) {
		q = mgl64.QuatIdent()
	}
	b := &Body{
		Type:           Dynamic,
		Mass:           opts.Mass,
		Shape:          opts.Shape,
		Position:       opts.Position,
		Quaternion:     q.Normalize(),
		LinearDamping:  0.01,
		AngularDamping: 0.01,
		listeners:      make(map[ListenerID]CollideFunc),
	}
	if opts.Mass == 0 {
		b.Type = Static
	} else {
		b.invMass = 1 / opts.Mass
		inertia := opts.Shape.LocalInertia(opts.Mass)
		for i := 0; i < 3; i++ {
			if inertia[i] > 0 {
				b.invInertia[i] = 1 / inertia[i]
			}
		}
	}
	return b, nil
}

func (b *Body) IsStatic() bool   { return b.Type == Static }
func (b *Body) IsSleeping() bool { return b.SleepState == Sleeping }
func (b *Body) InvMass() float64 { return b.invMass }

// World returns the world the body was added to, or nil.
func (b *Body) World() *World { return b.world }

// WakeUp resets the sleep state so the body is integrated again.
func (b *Body) WakeUp() {
	b.SleepState = Awake
	b.sleepyTime = 0
}

func (b *Body) sleep() {
	b.SleepState = Sleeping
	b.Velocity = mgl64.Vec3{}
	b.AngularVelocity = mgl64.Vec3{}
	b.sleepyTime = 0
}

// ApplyImpulse changes the momentum of the body. relPoint is the point of
// application relative to the centre of mass; the zero vector applies it at
// the centre and produces no spin.
func (b *Body) ApplyImpulse(impulse, relPoint mgl64.Vec3) {
	if b.Type != Dynamic {
		return
	}
	b.Velocity = b.Velocity.Add(impulse.Mul(b.invMass))
	torque := relPoint.Cross(impulse)
	b.AngularVelocity = b.AngularVelocity.Add(b.applyInvInertia(torque))
}

// VelocityAt returns the velocity of a world-space point attached to the body.
func (b *Body) VelocityAt(worldPoint mgl64.Vec3) mgl64.Vec3 {
	r := worldPoint.Sub(b.Position)
	return b.Velocity.Add(b.AngularVelocity.Cross(r))
}

// applyInvInertia multiplies v by the world-space inverse inertia tensor.
func (b *Body) applyInvInertia(v mgl64.Vec3) mgl64.Vec3 {
	if b.Type != Dynamic {
		return mgl64.Vec3{}
	}
	local := b.Quaternion.Conjugate().Rotate(v)
	local = mgl64.Vec3{local[0] * b.invInertia[0], local[1] * b.invInertia[1], local[2] * b.invInertia[2]}
	return b.Quaternion.Rotate(local)
}

// movable reports whether the solver may change the body's velocity.
// Sleeping bodies act as static until something wakes them.
func (b *Body) movable() bool { return b.Type == Dynamic && !b.IsSleeping() }

// sweep is how far any point of the body can travel in dt at its current
// velocity.
func (b *Body) sweep(dt float64) float64 {
	if !b.movable() {
		return 0
	}
	return (b.Velocity.Len() + b.AngularVelocity.Len()*b.Shape.BoundingRadius()) * dt
}

// aabb is the bounding box grown by the body's contact margin.
func (b *Body) aabb() (lo, hi mgl64.Vec3) {
	h := b.Shape.HalfExtentsAt(b.Quaternion)
	m := mgl64.Vec3{b.margin, b.margin, b.margin}
	return b.Position.Sub(h).Sub(m), b.Position.Add(h).Add(m)
}

func (b *Body) integrate(dt float64, gravity mgl64.Vec3) {
	b.Velocity = b.Velocity.Add(gravity.Mul(dt))
	b.Velocity = b.Velocity.Mul(math.Pow(1-b.LinearDamping, dt))
	b.AngularVelocity = b.AngularVelocity.Mul(math.Pow(1-b.AngularDamping, dt))
}

func (b *Body) advance(dt float64) {
	b.Position = b.Position.Add(b.Velocity.Mul(dt))
	w := b.AngularVelocity
	if w.LenSqr() == 0 {
		return
	}
	spin := mgl64.Quat{W: 0, V: w.Mul(0.5 * dt)}.Mul(b.Quaternion)
	b.Quaternion = b.Quaternion.Add(spin).Normalize()
}

// AddCollideListener subscribes fn to collision events of this body. The
// returned id is needed to detach it.
func (b *Body) AddCollideListener(fn CollideFunc) ListenerID {
	b.nextListener++
	id := b.nextListener
	b.listeners[id] = fn
	b.listenerOrder = append(b.listenerOrder, id)
	return id
}

// RemoveCollideListener detaches a listener. It reports whether one was removed.
func (b *Body) RemoveCollideListener(id ListenerID) bool {
	if _, ok := b.listeners[id]; !ok {
		return false
	}
	delete(b.listeners, id)
	for i, l := range b.listenerOrder {
		if l == id {
			b.listenerOrder = append(b.listenerOrder[:i], b.listenerOrder[i+1:]...)
			break
		}
	}
	return true
}

func (b *Body) ListenerCount() int { return len(b.listeners) }

func (b *Body) dispatch(ev CollideEvent) {
	order := append([]ListenerID(nil), b.listenerOrder...)
	for _, id := range order {
		if fn, ok := b.listeners[id]; ok {
			fn(ev)
		}
	}
}
