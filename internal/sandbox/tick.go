package sandbox

import (
	"math"

	"github.com/san-kum/rigidbox/internal/physics"
)

// Tick runs one frame: pick, step physics, copy body transforms onto meshes,
// cull fallen objects, clamp speeds, render, then notify observers.
func (s *Sandbox) Tick() Frame {
	elapsed := s.clock.Elapsed()
	delta := (elapsed - s.previous).Seconds()
	if delta < 0 {
		delta = 0
	} else {
		s.previous = elapsed
	}

	s.picker.Update()

	substeps := s.world.Step(s.cfg.FixedStep, delta, s.cfg.MaxSubSteps)

	culled := 0
	for obj := range s.registry.All() {
		obj.Mesh.Position = obj.Body.Position
		obj.Mesh.Quaternion = obj.Body.Quaternion

		if obj.Body.Position.Y() <= s.cfg.CullHeight {
			s.logger.Debug("culled", "id", obj.Body.ID, "y", obj.Body.Position.Y())
			s.Remove(obj)
			culled++
			continue
		}
		if s.cfg.SpeedCap > 0 {
			clampVelocity(obj.Body, s.cfg.SpeedCap)
		}
	}
	s.culled += culled

	s.renderer.Render(s.scene, s.camera, delta)

	s.ticks++
	frame := s.snapshot(elapsed.Seconds(), delta, substeps, culled)
	for _, o := range s.observers {
		o.OnFrame(frame)
	}
	return frame
}

// clampVelocity limits each velocity component to [-limit, limit].
func clampVelocity(b *physics.Body, limit float64) {
	for i, v := range b.Velocity {
		if math.Abs(v) > limit {
			b.Velocity[i] = math.Copysign(limit, v)
		}
	}
}

func (s *Sandbox) snapshot(elapsed, delta float64, substeps, culled int) Frame {
	f := Frame{
		Tick:     s.ticks,
		Elapsed:  elapsed,
		Delta:    delta,
		Substeps: substeps,
		Culled:   culled,
		Objects:  make([]ObjectState, 0, s.registry.Len()),
	}
	if h := s.picker.Hovered(); h != nil {
		if obj := s.registry.ByMesh(h.ID); obj != nil {
			f.Hovered = obj.Body.ID
		}
	}
	for obj := range s.registry.All() {
		f.Objects = append(f.Objects, objectState(obj))
	}
	return f
}
