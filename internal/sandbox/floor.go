package sandbox

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/rigidbox/internal/physics"
	"github.com/san-kum/rigidbox/internal/scene"
)

const (
	panelSize      = 3.0
	floorThickness = 0.01
)

// StaticPart is scenery: a static body with its mesh. It lives in the scene
// and the world but not in the registry, so it is never picked or culled.
type StaticPart struct {
	Mesh *scene.Mesh
	Body *physics.Body
}

// panelLayout is the open box built by the tiled floor: a bottom and four
// walls, each a 3x3 panel.
var panelLayout = []struct {
	pos   mgl64.Vec3
	axis  mgl64.Vec3
	angle float64
}{
	{mgl64.Vec3{0, 0, 0}, mgl64.Vec3{-1, 0, 0}, math.Pi / 2},
	{mgl64.Vec3{1, 1, 0}, mgl64.Vec3{0, 1, 0}, math.Pi / 2},
	{mgl64.Vec3{-1, 1, 0}, mgl64.Vec3{0, 1, 0}, math.Pi / 2},
	{mgl64.Vec3{0, 1, 1}, mgl64.Vec3{0, 0, 1}, 0},
	{mgl64.Vec3{0, 1, -1}, mgl64.Vec3{0, 0, 1}, 0},
}

func (s *Sandbox) buildFloor() error {
	switch s.cfg.Floor {
	case FloorNone:
		return nil
	case FloorTiled:
		for _, p := range panelLayout {
			if _, err := s.AddPanel(p.pos, p.axis, p.angle); err != nil {
				return err
			}
		}
		return nil
	}

	size := s.cfg.FloorSize
	q := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{-1, 0, 0})
	mat := &scene.Material{Name: "floor", Tag: scene.TagDefault, Color: "#5a5a5a"}
	part, err := s.addStatic(
		physics.NewBox(mgl64.Vec3{size / 2, size / 2, floorThickness}),
		mgl64.Vec3{}, q, mgl64.Vec3{size, size, 1}, mat,
	)
	if err != nil {
		return err
	}
	part.Mesh.ReceiveShadow = true
	return nil
}

// AddPanel adds a 3x3 static panel. pos is normalized: the panel centre ends
// up at pos scaled by half the panel size. The panel is rotated by angle
// radians about axis.
func (s *Sandbox) AddPanel(pos, axis mgl64.Vec3, angle float64) (StaticPart, error) {
	if !validPosition(pos) || !validPosition(axis) {
		return StaticPart{}, fmt.Errorf("panel at %v: %w", pos, ErrInvalidPosition)
	}
	q := mgl64.QuatIdent()
	if axis.LenSqr() > 0 && angle != 0 {
		q = mgl64.QuatRotate(angle, axis.Normalize())
	}
	mat := &scene.Material{Name: "panel", Tag: scene.TagDefault, Color: "#ffffff", Wireframe: true}
	return s.addStatic(
		physics.NewBox(mgl64.Vec3{panelSize / 2, panelSize / 2, floorThickness}),
		pos.Mul(panelSize/2), q, mgl64.Vec3{panelSize, panelSize, 1}, mat,
	)
}

func (s *Sandbox) addStatic(shape physics.Shape, pos mgl64.Vec3, q mgl64.Quat, scale mgl64.Vec3, mat *scene.Material) (StaticPart, error) {
	body, err := physics.NewBody(physics.BodyOptions{Position: pos, Quaternion: q, Shape: shape})
	if err != nil {
		return StaticPart{}, fmt.Errorf("static body: %w", err)
	}
	mesh := scene.NewMesh(s.planeGeometry, mat)
	mesh.Position = pos
	mesh.Quaternion = q
	mesh.Scale = scale

	s.world.AddBody(body)
	s.scene.Add(mesh)
	part := StaticPart{Mesh: mesh, Body: body}
	s.floor = append(s.floor, part)
	return part, nil
}
