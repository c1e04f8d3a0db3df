// Package sandbox couples the rigid-body world to the scene graph.
//
// A [Sandbox] owns both sides and keeps them paired through a [Registry]:
//
//   - [Sandbox.SpawnSphere], [Sandbox.SpawnBox]: create a mesh/body pair
//   - [Sandbox.Tick]: pick, step physics, copy transforms, cull, clamp, render
//   - [Picker]: pointer ray, hover highlight and click impulse
//   - [Sandbox.Remove]: tear a pair down on both sides at once
//
// # Frame loop
//
// The host calls Tick once per displayed frame. Physics advances in fixed
// 1/60 s quanta with up to three catch-up sub-steps; the mesh side only ever
// copies from the body side.
//
//	sb, _ := sandbox.New(sandbox.DefaultConfig(), sandbox.WithRenderer(term))
//	sb.SpawnSphere(0.5, mgl64.Vec3{0, 3, 0})
//	for {
//	    frame := sb.Tick()
//	    ...
//	}
//
// # Thread Safety
//
// A Sandbox is driven from a single goroutine. Pointer and click handlers
// must run on the same goroutine as Tick.
package sandbox
