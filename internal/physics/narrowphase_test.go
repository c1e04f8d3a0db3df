package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestBoxOnFloorManifold(t *testing.T) {
	tests := []struct {
		name string
		q    mgl64.Quat
	}{
		{"aligned", mgl64.QuatIdent()},
		{"turned about y", mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 1, 0})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorld(DefaultWorldConfig())
			floor := newFloor(t, w)
			box, err := NewBody(BodyOptions{
				Mass:       1,
				Position:   mgl64.Vec3{0, 0.255, 0},
				Quaternion: tt.q,
				Shape:      NewBox(mgl64.Vec3{0.25, 0.25, 0.25}),
			})
			if err != nil {
				t.Fatal(err)
			}

			cs := collide(floor, box, contactMargin)
			if len(cs) != 4 {
				t.Fatalf("expected one contact per bottom corner, got %d", len(cs))
			}
			for _, c := range cs {
				if c.A != floor || c.B != box {
					t.Errorf("contact bodies out of order")
				}
				if c.Normal.Sub(mgl64.Vec3{0, 1, 0}).Len() > 1e-9 {
					t.Errorf("expected upward normal, got %v", c.Normal)
				}
				if math.Abs(c.Depth-0.005) > 1e-9 {
					t.Errorf("expected depth 0.005, got %f", c.Depth)
				}
				if r := math.Hypot(c.Point.X(), c.Point.Z()); math.Abs(r-0.25*math.Sqrt2) > 1e-9 {
					t.Errorf("expected contact at a corner, got %v", c.Point)
				}
			}

			flipped := collide(box, floor, contactMargin)
			if len(flipped) != 4 || flipped[0].Normal.Y() > -0.999 {
				t.Errorf("expected reversed pair to report a downward normal, got %v", flipped)
			}
		})
	}
}

func TestBoxOnFloorSpeculative(t *testing.T) {
	w := NewWorld(DefaultWorldConfig())
	floor := newFloor(t, w)
	box, _ := NewBody(BodyOptions{Mass: 1, Position: mgl64.Vec3{0, 0.27, 0}, Shape: NewBox(mgl64.Vec3{0.25, 0.25, 0.25})})

	cs := collide(floor, box, contactMargin)
	if len(cs) != 4 {
		t.Fatalf("expected contacts within the margin, got %d", len(cs))
	}
	if d := cs[0].Depth; math.Abs(d+0.01) > 1e-9 {
		t.Errorf("expected a gap of 0.01 as negative depth, got %f", d)
	}
	if cs := collide(floor, box, 0.005); len(cs) != 0 {
		t.Errorf("expected no contacts beyond the margin, got %d", len(cs))
	}
}

func TestBoxOnBoxEdgeContact(t *testing.T) {
	// two bars crossed at right angles, both turned 45 degrees about
	// their long axis, so they meet edge to edge
	lower, _ := NewBody(BodyOptions{
		Mass:       1,
		Quaternion: mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{1, 0, 0}),
		Shape:      NewBox(mgl64.Vec3{1, 0.1, 0.1}),
	})
	upper, _ := NewBody(BodyOptions{
		Mass:       1,
		Position:   mgl64.Vec3{0, 0.2*math.Sqrt2 - 0.01, 0},
		Quaternion: mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 0, 1}),
		Shape:      NewBox(mgl64.Vec3{0.1, 0.1, 1}),
	})

	cs := collide(lower, upper, contactMargin)
	if len(cs) != 1 {
		t.Fatalf("expected a single edge contact, got %d", len(cs))
	}
	c := cs[0]
	if c.Normal.Sub(mgl64.Vec3{0, 1, 0}).Len() > 1e-6 {
		t.Errorf("expected upward normal, got %v", c.Normal)
	}
	if math.Abs(c.Depth-0.01) > 1e-6 {
		t.Errorf("expected depth 0.01, got %f", c.Depth)
	}
	if c.Point.Sub(mgl64.Vec3{0, 0.1*math.Sqrt2 - 0.005, 0}).Len() > 1e-6 {
		t.Errorf("expected contact between the edges, got %v", c.Point)
	}
}
