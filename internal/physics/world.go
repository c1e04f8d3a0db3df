package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// contactMargin is the gap below which a resting pair keeps its contacts.
const contactMargin = 0.02

// WorldConfig carries the tunables of a World.
type WorldConfig struct {
	Gravity          mgl64.Vec3
	AllowSleep       bool
	SleepSpeedLimit  float64
	SleepTimeLimit   float64
	SolverIterations int
	Material         ContactMaterial
	Broadphase       Broadphase
}

func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		Gravity:          mgl64.Vec3{0, -9.82, 0},
		AllowSleep:       true,
		SleepSpeedLimit:  0.1,
		SleepTimeLimit:   1,
		SolverIterations: 10,
		Material:         ContactMaterial{Friction: 0.1, Restitution: 0.75},
	}
}

// World owns the bodies and advances them in fixed steps.
type World struct {
	Gravity         mgl64.Vec3
	AllowSleep      bool
	SleepSpeedLimit float64
	SleepTimeLimit  float64
	Material        ContactMaterial

	bodies      []*Body
	nextID      int
	broadphase  Broadphase
	solver      solver
	accumulator float64
	time        float64
	steps       int
	touching    map[[2]int]bool
}

func NewWorld(cfg WorldConfig) *World {
	bp := cfg.Broadphase
	if bp == nil {
		bp = NewSAPBroadphase()
	}
	iters := cfg.SolverIterations
	if iters <= 0 {
		iters = 10
	}
	return &World{
		Gravity:         cfg.Gravity,
		AllowSleep:      cfg.AllowSleep,
		SleepSpeedLimit: cfg.SleepSpeedLimit,
		SleepTimeLimit:  cfg.SleepTimeLimit,
		Material:        cfg.Material,
		broadphase:      bp,
		solver:          solver{iterations: iters},
		touching:        make(map[[2]int]bool),
	}
}

// AddBody assigns the body an id and inserts it. Adding a body twice is a no-op.
func (w *World) AddBody(b *Body) {
	if b.world == w {
		return
	}
	w.nextID++
	b.ID = w.nextID
	b.world = w
	w.bodies = append(w.bodies, b)
}

// RemoveBody takes the body out of the world. It reports whether it was present.
func (w *World) RemoveBody(b *Body) bool {
	if b == nil || b.world != w {
		return false
	}
	for i, other := range w.bodies {
		if other == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	b.world = nil
	for key := range w.touching {
		if key[0] == b.ID || key[1] == b.ID {
			delete(w.touching, key)
		}
	}
	return true
}

func (w *World) Bodies() []*Body {
	out := make([]*Body, len(w.bodies))
	copy(out, w.bodies)
	return out
}

func (w *World) Time() float64 { return w.time }
func (w *World) Steps() int     { return w.steps }

// Step advances the world by fixed quanta of dt until the time reported by
// timeSinceLastCalled is consumed, taking at most maxSubSteps steps. Leftover
// time below one quantum is carried to the next call; time beyond the
// sub-step budget is dropped. It returns the number of steps taken.
func (w *World) Step(dt, timeSinceLastCalled float64, maxSubSteps int) int {
	if dt <= 0 || math.IsNaN(timeSinceLastCalled) {
		return 0
	}
	if timeSinceLastCalled > 0 {
		w.accumulator += timeSinceLastCalled
	}
	substeps := 0
	for w.accumulator >= dt && substeps < maxSubSteps {
		w.internalStep(dt)
		w.accumulator -= dt
		substeps++
	}
	w.accumulator = math.Mod(w.accumulator, dt)
	return substeps
}

func (w *World) internalStep(dt float64) {
	for _, b := range w.bodies {
		if b.Type == Dynamic && !b.IsSleeping() {
			b.integrate(dt, w.Gravity)
		}
	}

	// each body reaches as far as it can travel this step, so fast bodies
	// get contacts before they pass through thin shapes
	for _, b := range w.bodies {
		b.margin = b.sweep(dt) + contactMargin/2
	}

	var contacts []Contact
	touching := make(map[[2]int]bool)
	for _, pair := range w.broadphase.Pairs(w.bodies) {
		a, b := pair[0], pair[1]
		cs := collide(a, b, a.margin+b.margin)
		if len(cs) == 0 {
			continue
		}
		contacts = append(contacts, cs...)

		ev, ok := firstTouch(cs, dt)
		if !ok {
			continue
		}
		wake(a, b)
		key := pairKey(a, b)
		touching[key] = true
		if !w.touching[key] {
			a.dispatch(CollideEvent{Body: a, Target: b, Contact: ev})
			b.dispatch(CollideEvent{Body: b, Target: a, Contact: ev})
		}
	}
	w.touching = touching

	w.solver.solve(contacts, w.Material, dt)

	for _, b := range w.bodies {
		if b.Type == Dynamic && !b.IsSleeping() {
			b.advance(dt)
		}
	}
	if w.AllowSleep {
		w.updateSleep(dt)
	}
	w.time += dt
	w.steps++
}

func (w *World) updateSleep(dt float64) {
	limit := w.SleepSpeedLimit * w.SleepSpeedLimit
	for _, b := range w.bodies {
		if b.Type != Dynamic || b.IsSleeping() {
			continue
		}
		speed := b.Velocity.LenSqr() + b.AngularVelocity.LenSqr()
		if speed >= limit {
			b.SleepState = Awake
			b.sleepyTime = 0
			continue
		}
		if b.SleepState == Awake {
			b.SleepState = Sleepy
		}
		b.sleepyTime += dt
		if b.sleepyTime > w.SleepTimeLimit {
			b.sleep()
		}
	}
}

// firstTouch returns the first contact of cs that touches within dt.
func firstTouch(cs []Contact, dt float64) (Contact, bool) {
	for _, c := range cs {
		if c.touches(dt) {
			return c, true
		}
	}
	return Contact{}, false
}

// wake rouses a sleeping body touched by an awake one. A neighbour that is
// itself settling does not count, so a resting stack can fall asleep.
func wake(a, b *Body) {
	if a.IsSleeping() && b.Type == Dynamic && b.SleepState == Awake {
		a.WakeUp()
	}
	if b.IsSleeping() && a.Type == Dynamic && a.SleepState == Awake {
		b.WakeUp()
	}
}

func pairKey(a, b *Body) [2]int {
	if a.ID < b.ID {
		return [2]int{a.ID, b.ID}
	}
	return [2]int{b.ID, a.ID}
}
