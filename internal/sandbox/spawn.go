package sandbox

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/rigidbox/internal/physics"
	"github.com/san-kum/rigidbox/internal/scene"
)

const (
	spawnMass       = 1.0
	spawnHeight     = 3.0
	spawnSpread     = 3.0
	maxRandomRadius = 0.5
	maxRandomSide   = 0.75
)

// SpawnSphere adds a dynamic sphere of the given radius at pos.
func (s *Sandbox) SpawnSphere(radius float64, pos mgl64.Vec3) (*TrackedObject, error) {
	if !validDimension(radius) {
		return nil, fmt.Errorf("sphere radius %v: %w", radius, ErrInvalidDimensions)
	}
	mesh := scene.NewMesh(s.sphereGeometry, s.restMaterial())
	mesh.Scale = mgl64.Vec3{radius, radius, radius}
	return s.spawn(mesh, physics.NewSphere(radius), pos)
}

// SpawnBox adds a dynamic box of the given full extents at pos.
func (s *Sandbox) SpawnBox(width, height, depth float64, pos mgl64.Vec3) (*TrackedObject, error) {
	if !validDimension(width) || !validDimension(height) || !validDimension(depth) {
		return nil, fmt.Errorf("box %vx%vx%v: %w", width, height, depth, ErrInvalidDimensions)
	}
	mesh := scene.NewMesh(s.boxGeometry, s.restMaterial())
	mesh.Scale = mgl64.Vec3{width, height, depth}
	return s.spawn(mesh, physics.NewBox(mgl64.Vec3{width / 2, height / 2, depth / 2}), pos)
}

// SpawnRandomSphere drops a sphere of radius (0, 0.5] from above the floor.
func (s *Sandbox) SpawnRandomSphere() (*TrackedObject, error) {
	return s.SpawnSphere(s.randomSize(maxRandomRadius), s.randomDropPoint())
}

// SpawnRandomBox drops a box with sides in (0, 0.75] from above the floor.
func (s *Sandbox) SpawnRandomBox() (*TrackedObject, error) {
	return s.SpawnBox(
		s.randomSize(maxRandomSide),
		s.randomSize(maxRandomSide),
		s.randomSize(maxRandomSide),
		s.randomDropPoint(),
	)
}

// randomSize draws from (0, limit].
func (s *Sandbox) randomSize(limit float64) float64 {
	return limit * (1 - s.rng.Float64())
}

func (s *Sandbox) randomDropPoint() mgl64.Vec3 {
	return mgl64.Vec3{
		(s.rng.Float64() - 0.5) * spawnSpread,
		spawnHeight,
		(s.rng.Float64() - 0.5) * spawnSpread,
	}
}

func (s *Sandbox) spawn(mesh *scene.Mesh, shape physics.Shape, pos mgl64.Vec3) (*TrackedObject, error) {
	if !validPosition(pos) {
		return nil, fmt.Errorf("spawn at %v: %w", pos, ErrInvalidPosition)
	}
	body, err := physics.NewBody(physics.BodyOptions{
		Mass:     spawnMass,
		Position: pos,
		Shape:    shape,
	})
	if err != nil {
		return nil, fmt.Errorf("new body: %w", err)
	}
	mesh.Position = pos
	mesh.CastShadow = true

	s.world.AddBody(body)
	s.scene.Add(mesh)
	obj, err := s.registry.Add(mesh, body)
	if err != nil {
		s.world.RemoveBody(body)
		s.scene.Remove(mesh)
		return nil, err
	}
	obj.listener = body.AddCollideListener(s.playHitSound)

	s.logger.Debug("spawned", "shape", shape.Kind(), "id", body.ID, "pos", pos)
	return obj, nil
}

// playHitSound restarts the shared hit sound for impacts above the threshold,
// louder for harder hits.
func (s *Sandbox) playHitSound(ev physics.CollideEvent) {
	speed := ev.Contact.ImpactVelocityAlongNormal()
	if speed <= s.cfg.HitThreshold {
		return
	}
	s.sound.SetVolume(math.Min(speed/10, 1))
	s.sound.Rewind()
	s.sound.Play()
}

func validDimension(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func validPosition(p mgl64.Vec3) bool {
	for _, c := range p {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
