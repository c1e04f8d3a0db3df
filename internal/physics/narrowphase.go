package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// collide generates contacts for a body pair closer than margin. Every
// returned contact has A == a, B == b and a normal pointing from a to b.
// Depth is negative while the shapes are still apart.
func collide(a, b *Body, margin float64) []Contact {
	switch sa := a.Shape.(type) {
	case *Sphere:
		switch sb := b.Shape.(type) {
		case *Sphere:
			return sphereSphere(a, sa, b, sb, margin)
		case *Box:
			return sphereBox(a, sa, b, sb, margin)
		}
	case *Box:
		switch sb := b.Shape.(type) {
		case *Sphere:
			return flip(sphereBox(b, sb, a, sa, margin))
		case *Box:
			return boxBox(a, sa, b, sb, margin)
		}
	}
	return nil
}

func flip(cs []Contact) []Contact {
	for i := range cs {
		cs[i].A, cs[i].B = cs[i].B, cs[i].A
		cs[i].Normal = cs[i].Normal.Mul(-1)
	}
	return cs
}

func sphereSphere(a *Body, sa *Sphere, b *Body, sb *Sphere, margin float64) []Contact {
	d := b.Position.Sub(a.Position)
	dist := d.Len()
	rsum := sa.Radius + sb.Radius
	if dist >= rsum+margin {
		return nil
	}
	n := mgl64.Vec3{0, 1, 0}
	if dist > 1e-12 {
		n = d.Mul(1 / dist)
	}
	return []Contact{{
		A:      a,
		B:      b,
		Point:  a.Position.Add(n.Mul(sa.Radius - (rsum-dist)/2)),
		Normal: n,
		Depth:  rsum - dist,
	}}
}

func sphereBox(a *Body, sa *Sphere, b *Body, sb *Box, margin float64) []Contact {
	inv := b.Quaternion.Conjugate()
	local := inv.Rotate(a.Position.Sub(b.Position))
	h := sb.HalfExtents

	closest := local
	inside := true
	for i := 0; i < 3; i++ {
		if closest[i] < -h[i] {
			closest[i] = -h[i]
			inside = false
		} else if closest[i] > h[i] {
			closest[i] = h[i]
			inside = false
		}
	}

	var nLocal mgl64.Vec3
	var depth float64
	if inside {
		// centre inside the box: leave through the nearest face
		best := math.Inf(1)
		axis, sign := 1, 1.0
		for i := 0; i < 3; i++ {
			for _, s := range [2]float64{-1, 1} {
				dist := h[i] - s*local[i]
				if dist < best {
					best, axis, sign = dist, i, s
				}
			}
		}
		closest[axis] = sign * h[axis]
		nLocal[axis] = -sign
		depth = sa.Radius + best
	} else {
		diff := local.Sub(closest)
		dist := diff.Len()
		if dist >= sa.Radius+margin {
			return nil
		}
		nLocal = diff.Mul(-1 / dist)
		depth = sa.Radius - dist
	}

	return []Contact{{
		A:      a,
		B:      b,
		Point:  b.Position.Add(b.Quaternion.Rotate(closest)),
		Normal: b.Quaternion.Rotate(nLocal),
		Depth:  depth,
	}}
}

const (
	// a face of B or an edge pair must separate by this much more than the
	// best face of A to be chosen, so resting manifolds do not flip
	faceTolerance = 0.005
	edgeTolerance = 0.01
)

// boxFrame is a box posed in world space.
type boxFrame struct {
	pos  mgl64.Vec3
	axes [3]mgl64.Vec3
	h    mgl64.Vec3
}

func frameOf(b *Body, s *Box) boxFrame {
	return boxFrame{pos: b.Position, axes: boxAxes(b.Quaternion), h: s.HalfExtents}
}

// face returns the centre and the four vertices, in perimeter order, of the
// face whose outward normal is sign*axes[k].
func (f boxFrame) face(k int, sign float64) (mgl64.Vec3, []mgl64.Vec3) {
	c := f.pos.Add(f.axes[k].Mul(sign * f.h[k]))
	u, v := (k+1)%3, (k+2)%3
	U := f.axes[u].Mul(f.h[u])
	V := f.axes[v].Mul(f.h[v])
	return c, []mgl64.Vec3{
		c.Add(U).Add(V),
		c.Sub(U).Add(V),
		c.Sub(U).Sub(V),
		c.Add(U).Sub(V),
	}
}

// support returns the vertex of f furthest along dir.
func (f boxFrame) support(dir mgl64.Vec3) mgl64.Vec3 {
	p := f.pos
	for k := 0; k < 3; k++ {
		p = p.Add(f.axes[k].Mul(signOf(f.axes[k].Dot(dir)) * f.h[k]))
	}
	return p
}

// boxBox finds the axis of least penetration among the 15 separating-axis
// candidates. Face axes produce a manifold by clipping the incident face
// against the side planes of the reference face; edge axes produce one
// contact between the closest points of the two edges.
func boxBox(a *Body, sa *Box, b *Body, sb *Box, margin float64) []Contact {
	fa, fb := frameOf(a, sa), frameOf(b, sb)
	d := fb.pos.Sub(fa.pos)

	separation := func(axis mgl64.Vec3) float64 {
		return math.Abs(d.Dot(axis)) - projectRadius(fa.h, fa.axes, axis) - projectRadius(fb.h, fb.axes, axis)
	}

	bestA, faceA := math.Inf(-1), 0
	for i := 0; i < 3; i++ {
		s := separation(fa.axes[i])
		if s > margin {
			return nil
		}
		if s > bestA {
			bestA, faceA = s, i
		}
	}
	bestB, faceB := math.Inf(-1), 0
	for i := 0; i < 3; i++ {
		s := separation(fb.axes[i])
		if s > margin {
			return nil
		}
		if s > bestB {
			bestB, faceB = s, i
		}
	}
	bestE, edgeA, edgeB := math.Inf(-1), 0, 0
	var edgeAxis mgl64.Vec3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			c := fa.axes[i].Cross(fb.axes[j])
			if c.LenSqr() < 1e-6 {
				continue
			}
			c = c.Normalize()
			s := separation(c)
			if s > margin {
				return nil
			}
			if s > bestE {
				bestE, edgeA, edgeB, edgeAxis = s, i, j, c
			}
		}
	}

	faceSep, useB := bestA, false
	if bestB > bestA+faceTolerance {
		faceSep, useB = bestB, true
	}
	if bestE > faceSep+edgeTolerance {
		n := edgeAxis
		if n.Dot(d) < 0 {
			n = n.Mul(-1)
		}
		return []Contact{edgeContact(a, fa, edgeA, b, fb, edgeB, n, bestE)}
	}

	if !useB {
		n := fa.axes[faceA].Mul(signOf(fa.axes[faceA].Dot(d)))
		return faceContacts(a, b, fa, faceA, n, fb, n, margin)
	}
	n := fb.axes[faceB].Mul(-signOf(fb.axes[faceB].Dot(d)))
	return faceContacts(a, b, fb, faceB, n, fa, n.Mul(-1), margin)
}

// faceContacts clips the incident box's face most opposed to refNormal
// against the reference face and keeps the points within margin of it.
// refNormal is the outward normal of the reference face and normal the
// contact normal from a to b.
func faceContacts(a, b *Body, ref boxFrame, k int, refNormal mgl64.Vec3, inc boxFrame, normal mgl64.Vec3, margin float64) []Contact {
	centre, _ := ref.face(k, signOf(refNormal.Dot(ref.axes[k])))

	ik, isign, most := 0, 1.0, math.Inf(1)
	for i := 0; i < 3; i++ {
		dd := inc.axes[i].Dot(refNormal)
		if dd < most {
			ik, isign, most = i, 1, dd
		}
		if -dd < most {
			ik, isign, most = i, -1, -dd
		}
	}
	_, poly := inc.face(ik, isign)

	u, v := (k+1)%3, (k+2)%3
	sides := [4]struct {
		n mgl64.Vec3
		h float64
	}{
		{ref.axes[u], ref.h[u]},
		{ref.axes[u].Mul(-1), ref.h[u]},
		{ref.axes[v], ref.h[v]},
		{ref.axes[v].Mul(-1), ref.h[v]},
	}
	for _, side := range sides {
		poly = clipPolygon(poly, side.n, side.n.Dot(ref.pos)+side.h)
		if len(poly) == 0 {
			break
		}
	}

	var contacts []Contact
	for _, p := range poly {
		sep := refNormal.Dot(p.Sub(centre))
		if sep > margin {
			continue
		}
		contacts = append(contacts, Contact{
			A:      a,
			B:      b,
			Point:  p.Sub(refNormal.Mul(sep / 2)),
			Normal: normal,
			Depth:  -sep,
		})
	}
	if len(contacts) == 0 {
		// nothing survived clipping: fall back to the deepest incident vertex
		p := inc.support(refNormal.Mul(-1))
		sep := refNormal.Dot(p.Sub(centre))
		contacts = append(contacts, Contact{
			A:      a,
			B:      b,
			Point:  p.Sub(refNormal.Mul(sep / 2)),
			Normal: normal,
			Depth:  -sep,
		})
	}
	return contacts
}

// clipPolygon keeps the part of poly where n·p <= offset.
func clipPolygon(poly []mgl64.Vec3, n mgl64.Vec3, offset float64) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, 0, len(poly)+1)
	for i := range poly {
		p, q := poly[i], poly[(i+1)%len(poly)]
		dp, dq := n.Dot(p)-offset, n.Dot(q)-offset
		if dp <= 0 {
			out = append(out, p)
		}
		if (dp <= 0) != (dq <= 0) {
			t := dp / (dp - dq)
			out = append(out, p.Add(q.Sub(p).Mul(t)))
		}
	}
	return out
}

// edgeContact places a single contact midway between the closest points of
// the edge of A along axis i and the edge of B along axis j that face each
// other across n.
func edgeContact(a *Body, fa boxFrame, i int, b *Body, fb boxFrame, j int, n mgl64.Vec3, sep float64) Contact {
	pa := fa.pos
	for k := 0; k < 3; k++ {
		if k != i {
			pa = pa.Add(fa.axes[k].Mul(signOf(fa.axes[k].Dot(n)) * fa.h[k]))
		}
	}
	pb := fb.pos
	for k := 0; k < 3; k++ {
		if k != j {
			pb = pb.Add(fb.axes[k].Mul(-signOf(fb.axes[k].Dot(n)) * fb.h[k]))
		}
	}
	ca, cb := closestOnSegments(pa, fa.axes[i], fa.h[i], pb, fb.axes[j], fb.h[j])
	return Contact{
		A:      a,
		B:      b,
		Point:  ca.Add(cb).Mul(0.5),
		Normal: n,
		Depth:  -sep,
	}
}

// closestOnSegments returns the closest points of the segments p1 ± h1·d1
// and p2 ± h2·d2, where d1 and d2 are unit vectors.
func closestOnSegments(p1, d1 mgl64.Vec3, h1 float64, p2, d2 mgl64.Vec3, h2 float64) (mgl64.Vec3, mgl64.Vec3) {
	r := p1.Sub(p2)
	b := d1.Dot(d2)
	c := d1.Dot(r)
	f := d2.Dot(r)

	s := 0.0
	if denom := 1 - b*b; denom > 1e-9 {
		s = mgl64.Clamp((b*f-c)/denom, -h1, h1)
	}
	t := mgl64.Clamp(b*s+f, -h2, h2)
	s = mgl64.Clamp(b*t-c, -h1, h1)
	return p1.Add(d1.Mul(s)), p2.Add(d2.Mul(t))
}

func projectRadius(h mgl64.Vec3, axes [3]mgl64.Vec3, axis mgl64.Vec3) float64 {
	return h[0]*math.Abs(axes[0].Dot(axis)) +
		h[1]*math.Abs(axes[1].Dot(axis)) +
		h[2]*math.Abs(axes[2].Dot(axis))
}

func signOf(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}
