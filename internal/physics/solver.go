package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ContactMaterial holds the response parameters applied to every contact.
type ContactMaterial struct {
	Friction    float64
	Restitution float64
}

const (
	// contacts approaching slower than this do not bounce; it is well above
	// the speed gravity adds in one step, so resting contacts stay put
	restitutionThreshold = 1.0
	penetrationSlop      = 0.005
	correctionPercent    = 0.6
)

type constraint struct {
	c          Contact
	rA, rB     mgl64.Vec3
	normalMass float64
	tangents   [2]mgl64.Vec3
	tanMass    [2]float64
	bias       float64
	approach   float64
	bounce     bool
	accN       float64
	accT       [2]float64
}

type solver struct {
	iterations int
}

func effectiveMass(a, b *Body, rA, rB, dir mgl64.Vec3) float64 {
	k := 0.0
	if a.movable() {
		k += a.invMass + a.applyInvInertia(rA.Cross(dir)).Cross(rA).Dot(dir)
	}
	if b.movable() {
		k += b.invMass + b.applyInvInertia(rB.Cross(dir)).Cross(rB).Dot(dir)
	}
	if k <= 0 {
		return 0
	}
	return 1 / k
}

func tangentBasis(n mgl64.Vec3) [2]mgl64.Vec3 {
	ref := mgl64.Vec3{1, 0, 0}
	if math.Abs(n.X()) > 0.9 {
		ref = mgl64.Vec3{0, 1, 0}
	}
	t1 := n.Cross(ref).Normalize()
	t2 := n.Cross(t1)
	return [2]mgl64.Vec3{t1, t2}
}

func relativeVelocity(cs *constraint) mgl64.Vec3 {
	a, b := cs.c.A, cs.c.B
	vA := a.Velocity.Add(a.AngularVelocity.Cross(cs.rA))
	vB := b.Velocity.Add(b.AngularVelocity.Cross(cs.rB))
	return vB.Sub(vA)
}

func applyPair(cs *constraint, impulse mgl64.Vec3) {
	a, b := cs.c.A, cs.c.B
	if a.movable() {
		a.Velocity = a.Velocity.Sub(impulse.Mul(a.invMass))
		a.AngularVelocity = a.AngularVelocity.Sub(a.applyInvInertia(cs.rA.Cross(impulse)))
	}
	if b.movable() {
		b.Velocity = b.Velocity.Add(impulse.Mul(b.invMass))
		b.AngularVelocity = b.AngularVelocity.Add(b.applyInvInertia(cs.rB.Cross(impulse)))
	}
}

// solve runs sequential impulses over all contacts, applies restitution to
// the contacts that took load, then pushes overlapping bodies apart in
// proportion to their inverse masses. A contact that is still open may close
// by its gap within dt but no further.
func (s *solver) solve(contacts []Contact, mat ContactMaterial, dt float64) {
	if len(contacts) == 0 {
		return
	}
	cons := make([]constraint, len(contacts))
	for i, c := range contacts {
		cs := &cons[i]
		cs.c = c
		cs.rA = c.Point.Sub(c.A.Position)
		cs.rB = c.Point.Sub(c.B.Position)
		cs.normalMass = effectiveMass(c.A, c.B, cs.rA, cs.rB, c.Normal)
		cs.tangents = tangentBasis(c.Normal)
		for k := 0; k < 2; k++ {
			cs.tanMass[k] = effectiveMass(c.A, c.B, cs.rA, cs.rB, cs.tangents[k])
		}
		if c.Depth < 0 {
			cs.bias = c.Depth / dt
		}
		cs.approach = relativeVelocity(cs).Dot(c.Normal)
	}

	// contacts of one pair share the load
	share := make(map[[2]*Body]int)
	for _, c := range contacts {
		share[[2]*Body{c.A, c.B}]++
	}

	for it := 0; it < s.iterations; it++ {
		for i := range cons {
			cs := &cons[i]
			n := cs.c.Normal

			vn := relativeVelocity(cs).Dot(n)
			d := (cs.bias - vn) * cs.normalMass
			acc := math.Max(cs.accN+d, 0)
			d = acc - cs.accN
			cs.accN = acc
			applyPair(cs, n.Mul(d))

			limit := mat.Friction * cs.accN
			for k := 0; k < 2; k++ {
				t := cs.tangents[k]
				vt := relativeVelocity(cs).Dot(t)
				dj := -vt * cs.tanMass[k]
				accT := mgl64.Clamp(cs.accT[k]+dj, -limit, limit)
				dj = accT - cs.accT[k]
				cs.accT[k] = accT
				applyPair(cs, t.Mul(dj))
			}
		}
	}

	if mat.Restitution > 0 {
		bouncing := false
		for i := range cons {
			cs := &cons[i]
			// an open contact only stops the body at the surface; it bounces
			// on the next step once the shapes touch
			cs.bounce = cs.approach < -restitutionThreshold && cs.accN > 0 &&
				cs.c.Depth >= -penetrationSlop
			bouncing = bouncing || cs.bounce
		}
		for it := 0; bouncing && it < s.iterations; it++ {
			for i := range cons {
				cs := &cons[i]
				if !cs.bounce {
					continue
				}
				n := cs.c.Normal
				vn := relativeVelocity(cs).Dot(n)
				d := (-mat.Restitution*cs.approach - vn) * cs.normalMass
				acc := math.Max(cs.accN+d, 0)
				d = acc - cs.accN
				cs.accN = acc
				applyPair(cs, n.Mul(d))
			}
		}
	}

	for _, c := range contacts {
		invA, invB := 0.0, 0.0
		if c.A.movable() {
			invA = c.A.invMass
		}
		if c.B.movable() {
			invB = c.B.invMass
		}
		total := invA + invB
		if total == 0 || c.Depth <= penetrationSlop {
			continue
		}
		n := float64(share[[2]*Body{c.A, c.B}])
		mag := (c.Depth - penetrationSlop) / total * correctionPercent / n
		corr := c.Normal.Mul(mag)
		c.A.Position = c.A.Position.Sub(corr.Mul(invA))
		c.B.Position = c.B.Position.Add(corr.Mul(invB))
	}
}
