package sandbox

// Remove tears obj down on both sides: listener, body, mesh, registry entry.
// Removing an object that is no longer tracked is a no-op returning false.
func (s *Sandbox) Remove(obj *TrackedObject) bool {
	if obj == nil || s.registry.ByBody(obj.Body.ID) != obj {
		return false
	}
	obj.Body.RemoveCollideListener(obj.listener)
	s.world.RemoveBody(obj.Body)
	s.scene.Remove(obj.Mesh)
	s.registry.Remove(obj.Body.ID)
	s.picker.forget(obj.Mesh)

	s.logger.Debug("removed", "id", obj.Body.ID)
	return true
}

// Reset removes every tracked object and returns how many there were. The
// floor stays.
func (s *Sandbox) Reset() int {
	n := 0
	for obj := range s.registry.All() {
		if s.Remove(obj) {
			n++
		}
	}
	s.logger.Info("reset", "removed", n)
	return n
}
