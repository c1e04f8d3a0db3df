// Package scene holds the visual side of the sandbox: meshes, materials, a
// perspective camera and a raycaster for pointer picking.
package scene

import "github.com/go-gl/mathgl/mgl64"

type GeometryKind int

const (
	// GeometrySphere is a unit-radius sphere.
	GeometrySphere GeometryKind = iota
	// GeometryBox is a 1x1x1 cube centred on the origin.
	GeometryBox
	// GeometryPlane is a 1x1 square in the local XY plane.
	GeometryPlane
)

func (g GeometryKind) String() string {
	switch g {
	case GeometrySphere:
		return "sphere"
	case GeometryBox:
		return "box"
	case GeometryPlane:
		return "plane"
	}
	return "unknown"
}

// Geometry is shared between meshes; per-mesh size comes from Mesh.Scale.
type Geometry struct {
	Kind     GeometryKind
	Segments int
}

func NewSphereGeometry(segments int) *Geometry {
	return &Geometry{Kind: GeometrySphere, Segments: segments}
}

func NewBoxGeometry() *Geometry { return &Geometry{Kind: GeometryBox} }

func NewPlaneGeometry(segments int) *Geometry {
	return &Geometry{Kind: GeometryPlane, Segments: segments}
}

type Tag int

const (
	TagDefault Tag = iota
	TagHighlighted
)

// Material is the look of a mesh. Tag identifies its role so pickers can tell
// a highlight from a resting colour without extra bookkeeping.
type Material struct {
	Name      string
	Tag       Tag
	Color     string
	Wireframe bool
}

type Mesh struct {
	ID            int
	Geometry      *Geometry
	Material      *Material
	Position      mgl64.Vec3
	Quaternion    mgl64.Quat
	Scale         mgl64.Vec3
	CastShadow    bool
	ReceiveShadow bool
}

func NewMesh(g *Geometry, m *Material) *Mesh {
	return &Mesh{
		Geometry:   g,
		Material:   m,
		Quaternion: mgl64.QuatIdent(),
		Scale:      mgl64.Vec3{1, 1, 1},
	}
}

// Transform returns the local-to-world matrix.
func (m *Mesh) Transform() mgl64.Mat4 {
	t := mgl64.Translate3D(m.Position.X(), m.Position.Y(), m.Position.Z())
	r := m.Quaternion.Mat4()
	s := mgl64.Scale3D(m.Scale.X(), m.Scale.Y(), m.Scale.Z())
	return t.Mul4(r).Mul4(s)
}

// Scene is an ordered set of meshes.
type Scene struct {
	meshes []*Mesh
	nextID int
}

func New() *Scene { return &Scene{} }

// Add assigns the mesh an id on first insertion. Adding a mesh twice is a no-op.
func (s *Scene) Add(m *Mesh) {
	if s.Contains(m) {
		return
	}
	if m.ID == 0 {
		s.nextID++
		m.ID = s.nextID
	}
	s.meshes = append(s.meshes, m)
}

// Remove reports whether the mesh was present.
func (s *Scene) Remove(m *Mesh) bool {
	for i, other := range s.meshes {
		if other == m {
			s.meshes = append(s.meshes[:i], s.meshes[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Scene) Contains(m *Mesh) bool {
	for _, other := range s.meshes {
		if other == m {
			return true
		}
	}
	return false
}

func (s *Scene) Meshes() []*Mesh {
	out := make([]*Mesh, len(s.meshes))
	copy(out, s.meshes)
	return out
}

func (s *Scene) Len() int { return len(s.meshes) }
