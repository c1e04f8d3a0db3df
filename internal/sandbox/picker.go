package sandbox

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/rigidbox/internal/scene"
)

// PointerState is the pointer in normalized device coordinates, y up.
type PointerState struct {
	X, Y float64
}

// ScreenToPointer maps a cell or pixel position inside a w×h viewport to
// normalized device coordinates.
func ScreenToPointer(cx, cy, w, h float64) PointerState {
	if w <= 0 || h <= 0 {
		return PointerState{}
	}
	return PointerState{
		X: cx/w*2 - 1,
		Y: -(cy/h)*2 + 1,
	}
}

// Picker casts the pointer ray, keeps the hover highlight current and turns
// clicks into impulses.
type Picker struct {
	camera    *scene.Camera
	registry  *Registry
	highlight *scene.Material
	restore   func() *scene.Material

	pointer  PointerState
	hovered  *scene.Mesh
	strength float64
}

func newPicker(cam *scene.Camera, reg *Registry, highlight *scene.Material, restore func() *scene.Material, strength float64) *Picker {
	return &Picker{
		camera:    cam,
		registry:  reg,
		highlight: highlight,
		restore:   restore,
		strength:  mgl64.Clamp(strength, MinStrength, MaxStrength),
	}
}

// SetPointer stores the pointer, clamped to [-1, 1] on both axes. It takes
// effect on the next Update.
func (p *Picker) SetPointer(x, y float64) {
	p.pointer = PointerState{X: mgl64.Clamp(x, -1, 1), Y: mgl64.Clamp(y, -1, 1)}
}

func (p *Picker) Pointer() PointerState { return p.pointer }

func (p *Picker) Strength() float64 { return p.strength }

// SetStrength clamps v to [1, 1000].
func (p *Picker) SetStrength(v float64) {
	p.strength = mgl64.Clamp(v, MinStrength, MaxStrength)
}

// Hovered returns the mesh under the pointer as of the last Update, or nil.
func (p *Picker) Hovered() *scene.Mesh { return p.hovered }

// Update recomputes the hover target. Every highlighted mesh other than the
// new target goes back to its resting material.
func (p *Picker) Update() *scene.Mesh {
	ray := p.camera.Ray(p.pointer.X, p.pointer.Y)
	meshes := p.registry.Meshes()

	var hit *scene.Mesh
	if hits := scene.IntersectObjects(ray, meshes); len(hits) > 0 {
		hit = hits[0].Mesh
	}

	for _, m := range meshes {
		if m != hit && m.Material != nil && m.Material.Tag == scene.TagHighlighted {
			m.Material = p.restore()
		}
	}
	if hit != nil {
		hit.Material = p.highlight
	}
	p.hovered = hit
	return hit
}

// Click pushes the hovered body along the camera's horizontal facing. It
// reports whether an impulse was applied.
func (p *Picker) Click() bool {
	if p.hovered == nil {
		return false
	}
	obj := p.registry.ByMesh(p.hovered.ID)
	if obj == nil {
		return false
	}
	dir := p.camera.WorldDirection()
	dir[1] = 0
	obj.Body.WakeUp()
	obj.Body.ApplyImpulse(dir.Mul(p.strength), mgl64.Vec3{})
	return true
}

// forget drops the hover target if it is m.
func (p *Picker) forget(m *scene.Mesh) {
	if p.hovered == m {
		p.hovered = nil
	}
}
