package scene

import "github.com/go-gl/mathgl/mgl64"

// Camera is a perspective camera looking from Position at Target.
type Camera struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
	Up       mgl64.Vec3
	FovY     float64 // degrees
	Aspect   float64
	Near     float64
	Far      float64
}

func NewCamera(fovY, aspect, near, far float64) *Camera {
	return &Camera{
		Up:     mgl64.Vec3{0, 1, 0},
		FovY:   fovY,
		Aspect: aspect,
		Near:   near,
		Far:    far,
	}
}

func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position, c.Target, c.Up)
}

func (c *Camera) Projection() mgl64.Mat4 {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	return mgl64.Perspective(mgl64.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

func (c *Camera) ViewProjection() mgl64.Mat4 {
	return c.Projection().Mul4(c.View())
}

// WorldDirection is the unit vector the camera looks along.
func (c *Camera) WorldDirection() mgl64.Vec3 {
	d := c.Target.Sub(c.Position)
	if d.LenSqr() == 0 {
		return mgl64.Vec3{0, 0, -1}
	}
	return d.Normalize()
}

// Unproject maps a point in normalized device coordinates to world space.
func (c *Camera) Unproject(ndc mgl64.Vec3) mgl64.Vec3 {
	inv := c.ViewProjection().Inv()
	p := inv.Mul4x1(ndc.Vec4(1))
	if p.W() == 0 {
		return p.Vec3()
	}
	return p.Vec3().Mul(1 / p.W())
}

// Project maps a world point to normalized device coordinates. ok is false
// when the point lies behind the camera.
func (c *Camera) Project(p mgl64.Vec3) (ndc mgl64.Vec3, ok bool) {
	clip := c.ViewProjection().Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return mgl64.Vec3{}, false
	}
	return clip.Vec3().Mul(1 / clip.W()), true
}

// Ray builds a world-space ray from the camera through a pointer position
// given in normalized coordinates (both axes in [-1, 1], y up).
func (c *Camera) Ray(x, y float64) Ray {
	target := c.Unproject(mgl64.Vec3{x, y, 0.5})
	return Ray{Origin: c.Position, Direction: target.Sub(c.Position).Normalize()}
}
