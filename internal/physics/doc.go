// Package physics provides a small rigid-body engine for spheres and boxes.
//
// A [World] owns a set of [Body] values and advances them under gravity and
// contact forces:
//
//   - [Sphere] and [Box]: collision shapes
//   - [Body]: dynamic or static rigid body with position, quaternion and velocities
//   - [SAPBroadphase]: sweep-and-prune pair search along one axis
//   - [ContactMaterial]: friction and restitution used by the contact solver
//
// # Stepping
//
// [World.Step] advances the world by a fixed quantum, possibly several times,
// to catch up with the elapsed wall time:
//
//	world := physics.NewWorld(physics.DefaultWorldConfig())
//	body, _ := physics.NewBody(physics.BodyOptions{Mass: 1, Shape: physics.NewSphere(0.5)})
//	world.AddBody(body)
//	world.Step(1.0/60, delta, 3)
//
// # Collision events
//
// Listeners registered with [Body.AddCollideListener] receive a
// [CollideEvent] for every new contact pair, before the solver runs. The
// returned [ListenerID] detaches the listener again.
//
// # Thread Safety
//
// A World and its bodies are NOT safe for concurrent use.
package physics
