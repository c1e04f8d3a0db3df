package sandbox

import (
	"iter"

	"github.com/san-kum/rigidbox/internal/physics"
	"github.com/san-kum/rigidbox/internal/scene"
)

// TrackedObject pairs a mesh with the body that drives it.
type TrackedObject struct {
	Mesh *scene.Mesh
	Body *physics.Body

	listener physics.ListenerID
}

// Registry is the ordered set of live pairs. A mesh or body appears in at
// most one pair. meshes mirrors objects index for index and is the list the
// picker hit-tests against.
type Registry struct {
	objects []*TrackedObject
	meshes  []*scene.Mesh
}

func NewRegistry() *Registry { return &Registry{} }

// Add tracks a new pair. It fails with ErrAlreadyTracked when either side is
// already paired.
func (r *Registry) Add(mesh *scene.Mesh, body *physics.Body) (*TrackedObject, error) {
	for _, o := range r.objects {
		if o.Mesh == mesh || o.Body == body {
			return nil, ErrAlreadyTracked
		}
	}
	obj := &TrackedObject{Mesh: mesh, Body: body}
	r.objects = append(r.objects, obj)
	r.meshes = append(r.meshes, mesh)
	return obj, nil
}

// Remove drops the pair whose body has the given id. Unknown ids are a no-op.
func (r *Registry) Remove(bodyID int) (*TrackedObject, bool) {
	for i, o := range r.objects {
		if o.Body.ID == bodyID {
			r.objects = append(r.objects[:i], r.objects[i+1:]...)
			r.meshes = append(r.meshes[:i], r.meshes[i+1:]...)
			return o, true
		}
	}
	return nil, false
}

// All yields the pairs in insertion order. It iterates over a snapshot, so
// removing pairs while ranging is safe.
func (r *Registry) All() iter.Seq[*TrackedObject] {
	snapshot := make([]*TrackedObject, len(r.objects))
	copy(snapshot, r.objects)
	return func(yield func(*TrackedObject) bool) {
		for _, o := range snapshot {
			if !yield(o) {
				return
			}
		}
	}
}

func (r *Registry) Len() int { return len(r.objects) }

// Meshes returns the tracked meshes in insertion order. The slice is shared
// with the registry and must not be modified; it is valid until the next Add
// or Remove.
func (r *Registry) Meshes() []*scene.Mesh { return r.meshes }

func (r *Registry) ByMesh(meshID int) *TrackedObject {
	for _, o := range r.objects {
		if o.Mesh.ID == meshID {
			return o
		}
	}
	return nil
}

func (r *Registry) ByBody(bodyID int) *TrackedObject {
	for _, o := range r.objects {
		if o.Body.ID == bodyID {
			return o
		}
	}
	return nil
}
