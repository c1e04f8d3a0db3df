package sandbox_test

import (
	"context"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rigidbox/internal/sandbox"
	"github.com/san-kum/rigidbox/internal/scene"
)

const frameTime = 20 * time.Millisecond

type soundCall struct {
	op     string
	volume float64
}

type recordingSound struct {
	calls []soundCall
}

func (r *recordingSound) SetVolume(v float64) { r.calls = append(r.calls, soundCall{op: "volume", volume: v}) }
func (r *recordingSound) Rewind()             { r.calls = append(r.calls, soundCall{op: "rewind"}) }
func (r *recordingSound) Play()               { r.calls = append(r.calls, soundCall{op: "play"}) }

type countingRenderer struct{ frames int }

func (c *countingRenderer) Render(*scene.Scene, *scene.Camera, float64) { c.frames++ }

func emptyConfig(floor sandbox.FloorKind) sandbox.Config {
	cfg := sandbox.DefaultConfig()
	cfg.InitialSphere = false
	cfg.Floor = floor
	return cfg
}

func inf() float64 { return math.Inf(1) }

func highlighted(reg *sandbox.Registry) int {
	n := 0
	for _, m := range reg.Meshes() {
		if m.Material.Tag == scene.TagHighlighted {
			n++
		}
	}
	return n
}

var _ = Describe("Sandbox", func() {
	var (
		sb    *sandbox.Sandbox
		clock *sandbox.ManualClock
		sound *recordingSound
		rend  *countingRenderer
	)

	build := func(cfg sandbox.Config) {
		var err error
		clock = sandbox.NewManualClock()
		sound = &recordingSound{}
		rend = &countingRenderer{}
		sb, err = sandbox.New(cfg,
			sandbox.WithClock(clock),
			sandbox.WithSound(sound),
			sandbox.WithRenderer(rend),
			sandbox.WithLogger(log.New(io.Discard)),
		)
		Expect(err).NotTo(HaveOccurred())
	}

	tick := func() sandbox.Frame {
		clock.Advance(frameTime)
		return sb.Tick()
	}

	Describe("construction", func() {
		It("spawns the initial sphere above a plane floor", func() {
			build(sandbox.DefaultConfig())
			Expect(sb.Registry().Len()).To(Equal(1))
			Expect(sb.Floor()).To(HaveLen(1))
			Expect(sb.Scene().Len()).To(Equal(2))

			var pos mgl64.Vec3
			for obj := range sb.Registry().All() {
				pos = obj.Body.Position
			}
			Expect(pos).To(Equal(mgl64.Vec3{0, 3, 0}))
		})

		It("builds five panels for the tiled floor", func() {
			build(emptyConfig(sandbox.FloorTiled))
			Expect(sb.Floor()).To(HaveLen(5))
			Expect(sb.World().Bodies()).To(HaveLen(5))
			Expect(sb.Registry().Len()).To(BeZero())
			for _, p := range sb.Floor() {
				Expect(p.Body.IsStatic()).To(BeTrue())
				Expect(p.Mesh.Material.Wireframe).To(BeTrue())
			}
		})

		It("rejects an invalid config", func() {
			cfg := sandbox.DefaultConfig()
			cfg.Strength = 0
			_, err := sandbox.New(cfg)
			Expect(err).To(MatchError(sandbox.ErrInvalidConfig))
		})
	})

	Describe("spawning", func() {
		BeforeEach(func() { build(emptyConfig(sandbox.FloorPlane)) })

		It("pairs a scaled mesh with a dynamic body", func() {
			obj, err := sb.SpawnBox(1, 2, 3, mgl64.Vec3{0, 4, 0})
			Expect(err).NotTo(HaveOccurred())
			Expect(obj.Mesh.Scale).To(Equal(mgl64.Vec3{1, 2, 3}))
			Expect(obj.Mesh.Position).To(Equal(mgl64.Vec3{0, 4, 0}))
			Expect(obj.Mesh.CastShadow).To(BeTrue())
			Expect(obj.Body.Mass).To(Equal(1.0))
			Expect(obj.Body.ListenerCount()).To(Equal(1))
			Expect(sb.Scene().Contains(obj.Mesh)).To(BeTrue())
			Expect(obj.Body.World()).To(BeIdenticalTo(sb.World()))
		})

		DescribeTable("rejects bad arguments without creating anything",
			func(spawn func() error, want error) {
				before := sb.Registry().Len()
				Expect(spawn()).To(MatchError(want))
				Expect(sb.Registry().Len()).To(Equal(before))
				Expect(sb.World().Bodies()).To(HaveLen(1))
			},
			Entry("zero radius", func() error {
				_, err := sb.SpawnSphere(0, mgl64.Vec3{})
				return err
			}, sandbox.ErrInvalidDimensions),
			Entry("negative side", func() error {
				_, err := sb.SpawnBox(1, -1, 1, mgl64.Vec3{})
				return err
			}, sandbox.ErrInvalidDimensions),
			Entry("infinite position", func() error {
				_, err := sb.SpawnSphere(0.5, mgl64.Vec3{inf(), 0, 0})
				return err
			}, sandbox.ErrInvalidPosition),
		)

		It("keeps random spawns inside their ranges", func() {
			for i := 0; i < 200; i++ {
				s, err := sb.SpawnRandomSphere()
				Expect(err).NotTo(HaveOccurred())
				Expect(s.Mesh.Scale.X()).To(And(BeNumerically(">", 0), BeNumerically("<=", 0.5)))

				b, err := sb.SpawnRandomBox()
				Expect(err).NotTo(HaveOccurred())
				for _, side := range b.Mesh.Scale {
					Expect(side).To(And(BeNumerically(">", 0), BeNumerically("<=", 0.75)))
				}
				for _, p := range []mgl64.Vec3{s.Body.Position, b.Body.Position} {
					Expect(p.X()).To(And(BeNumerically(">=", -1.5), BeNumerically("<", 1.5)))
					Expect(p.Z()).To(And(BeNumerically(">=", -1.5), BeNumerically("<", 1.5)))
					Expect(p.Y()).To(Equal(3.0))
				}
			}
		})

		It("plays the hit sound when a sphere lands hard", func() {
			_, err := sb.SpawnSphere(0.5, mgl64.Vec3{0, 3, 0})
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 60 && len(sound.calls) == 0; i++ {
				tick()
			}
			Expect(len(sound.calls)).To(BeNumerically(">=", 3))
			Expect(sound.calls[0].op).To(Equal("volume"))
			Expect(sound.calls[0].volume).To(And(BeNumerically(">", 0.15), BeNumerically("<=", 1)))
			Expect(sound.calls[1].op).To(Equal("rewind"))
			Expect(sound.calls[2].op).To(Equal("play"))
		})
	})

	Describe("registry pairing", func() {
		BeforeEach(func() { build(emptyConfig(sandbox.FloorPlane)) })

		It("keeps objects and hit-test meshes in step through random spawns and removals", func() {
			rng := rand.New(rand.NewSource(7))
			for i := 0; i < 300; i++ {
				switch rng.Intn(3) {
				case 0:
					_, err := sb.SpawnRandomSphere()
					Expect(err).NotTo(HaveOccurred())
				case 1:
					_, err := sb.SpawnRandomBox()
					Expect(err).NotTo(HaveOccurred())
				case 2:
					var victim *sandbox.TrackedObject
					for obj := range sb.Registry().All() {
						victim = obj
						if rng.Intn(2) == 0 {
							break
						}
					}
					sb.Remove(victim)
				}
				reg := sb.Registry()
				Expect(reg.Meshes()).To(HaveLen(reg.Len()))
				Expect(sb.Scene().Len()).To(Equal(reg.Len() + len(sb.Floor())))
				Expect(sb.World().Bodies()).To(HaveLen(reg.Len() + len(sb.Floor())))
			}
		})

		It("treats a second removal as a no-op", func() {
			a, _ := sb.SpawnSphere(0.3, mgl64.Vec3{0, 2, 0})
			_, _ = sb.SpawnSphere(0.3, mgl64.Vec3{1, 2, 0})

			Expect(sb.Remove(a)).To(BeTrue())
			after := sb.Registry().Len()
			sceneAfter := sb.Scene().Len()

			Expect(sb.Remove(a)).To(BeFalse())
			Expect(sb.Registry().Len()).To(Equal(after))
			Expect(sb.Scene().Len()).To(Equal(sceneAfter))
			Expect(a.Body.ListenerCount()).To(BeZero())
			Expect(a.Body.World()).To(BeNil())
		})

		It("empties the registry on reset but keeps the floor", func() {
			for i := 0; i < 4; i++ {
				_, _ = sb.SpawnRandomBox()
			}
			Expect(sb.Reset()).To(Equal(4))
			Expect(sb.Registry().Len()).To(BeZero())
			Expect(sb.Scene().Len()).To(Equal(1))
			Expect(sb.World().Bodies()).To(HaveLen(1))
		})
	})

	Describe("ticking", func() {
		BeforeEach(func() { build(emptyConfig(sandbox.FloorNone)) })

		It("culls at y = -11 and keeps y = -9", func() {
			low, _ := sb.SpawnSphere(0.5, mgl64.Vec3{0, 0, 0})
			high, _ := sb.SpawnSphere(0.5, mgl64.Vec3{5, 0, 0})
			low.Body.Position[1] = -11
			high.Body.Position[1] = -9

			frame := tick()
			Expect(sb.Registry().ByBody(low.Body.ID)).To(BeNil())
			Expect(sb.Registry().ByBody(high.Body.ID)).To(BeIdenticalTo(high))
			Expect(frame.Culled).To(Equal(1))
			Expect(frame.Objects).To(HaveLen(1))
		})

		It("clamps each velocity component to the speed cap", func() {
			sb.SetSpeedCap(10)
			obj, _ := sb.SpawnSphere(0.5, mgl64.Vec3{0, 5, 0})
			obj.Body.Velocity = mgl64.Vec3{20, -20, 0}

			tick()
			Expect(obj.Body.Velocity).To(Equal(mgl64.Vec3{10, -10, 0}))
		})

		It("copies body transforms onto meshes exactly", func() {
			build(emptyConfig(sandbox.FloorPlane))
			for i := 0; i < 6; i++ {
				_, _ = sb.SpawnRandomBox()
				_, _ = sb.SpawnRandomSphere()
			}
			for i := 0; i < 120; i++ {
				tick()
				for obj := range sb.Registry().All() {
					Expect(obj.Mesh.Position).To(Equal(obj.Body.Position))
					Expect(obj.Mesh.Quaternion).To(Equal(obj.Body.Quaternion))
				}
			}
		})

		It("removes a sphere once it falls past the cull height", func() {
			obj, err := sb.SpawnSphere(0.5, mgl64.Vec3{0, 3, 0})
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 1000 && sb.Registry().Len() > 0; i++ {
				tick()
			}
			Expect(obj.Body.Position.Y()).To(BeNumerically("<=", -10))
			Expect(sb.Registry().ByBody(obj.Body.ID)).To(BeNil())
			Expect(sb.Scene().Contains(obj.Mesh)).To(BeFalse())
			Expect(obj.Body.World()).To(BeNil())
			Expect(sb.Culled()).To(Equal(1))
		})

		It("renders and notifies observers once per tick", func() {
			var frames []sandbox.Frame
			sb.AddObserver(sandbox.ObserverFunc(func(f sandbox.Frame) { frames = append(frames, f) }))
			_, _ = sb.SpawnSphere(0.5, mgl64.Vec3{0, 3, 0})

			n, err := sb.Run(context.Background(), 10, frameTime)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(10))
			Expect(rend.frames).To(Equal(10))
			Expect(frames).To(HaveLen(10))
			Expect(frames[9].Tick).To(Equal(10))
			Expect(frames[9].Objects[0].Shape).To(Equal("sphere"))
		})

		It("stops a run when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			n, err := sb.Run(ctx, 0, frameTime)
			Expect(err).To(MatchError(context.Canceled))
			Expect(n).To(BeZero())
		})
	})

	Describe("resting on the plane floor", func() {
		BeforeEach(func() { build(emptyConfig(sandbox.FloorPlane)) })

		ticksFor := func(seconds float64) int {
			return int(seconds / frameTime.Seconds())
		}

		It("lets a dropped box come to rest on its face and sleep", func() {
			obj, err := sb.SpawnBox(0.5, 0.5, 0.5, mgl64.Vec3{0, 3, 0})
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < ticksFor(12); i++ {
				tick()
			}
			Expect(sb.Registry().ByBody(obj.Body.ID)).To(BeIdenticalTo(obj))
			Expect(obj.Body.Position.Y()).To(BeNumerically("~", 0.25+0.01, 0.03))
			Expect(obj.Body.Position.X()).To(BeNumerically("~", 0, 0.1))
			Expect(obj.Body.Position.Z()).To(BeNumerically("~", 0, 0.1))
			Expect(obj.Body.IsSleeping()).To(BeTrue())
		})

		It("holds a two-box stack until both boxes sleep", func() {
			lower, _ := sb.SpawnBox(0.5, 0.5, 0.5, mgl64.Vec3{0, 0.3, 0})
			upper, _ := sb.SpawnBox(0.5, 0.5, 0.5, mgl64.Vec3{0, 0.85, 0})

			for i := 0; i < ticksFor(10); i++ {
				tick()
			}
			Expect(lower.Body.Position.Y()).To(BeNumerically("~", 0.26, 0.02))
			Expect(upper.Body.Position.Y()).To(BeNumerically("~", 0.76, 0.03))
			Expect(upper.Body.Position.X()).To(BeNumerically("~", 0, 0.05))
			Expect(upper.Body.Position.Z()).To(BeNumerically("~", 0, 0.05))
			Expect(lower.Body.IsSleeping()).To(BeTrue())
			Expect(upper.Body.IsSleeping()).To(BeTrue())
		})

		It("never culls random spawns that nobody touches", func() {
			spawned := 0
			for i := 0; i < ticksFor(15); i++ {
				if i%25 == 0 && spawned < 10 {
					spawn := sb.SpawnRandomSphere
					if spawned%2 == 1 {
						spawn = sb.SpawnRandomBox
					}
					_, err := spawn()
					Expect(err).NotTo(HaveOccurred())
					spawned++
				}
				tick()
			}
			Expect(sb.Culled()).To(BeZero())
			Expect(sb.Registry().Len()).To(Equal(10))
			for obj := range sb.Registry().All() {
				p := obj.Body.Position
				Expect(p.Y()).To(BeNumerically(">", 0))
				Expect(math.Abs(p.X())).To(BeNumerically("<", 5))
				Expect(math.Abs(p.Z())).To(BeNumerically("<", 5))
			}
		})
	})

	Describe("random palette", func() {
		spawnAfterHovering := func(hover bool) (mgl64.Vec3, mgl64.Vec3) {
			cfg := emptyConfig(sandbox.FloorNone)
			cfg.RandomPalette = true
			cfg.Seed = 42
			build(cfg)
			obj, err := sb.SpawnSphere(0.5, mgl64.Vec3{0, 0, 0})
			Expect(err).NotTo(HaveOccurred())
			sb.SetPointer(0.9, 0.9)

			for i := 0; i < 3; i++ {
				if hover {
					sb.SetPointer(0, 0)
				}
				tick()
				if hover {
					Expect(sb.Hovered()).To(BeIdenticalTo(obj.Mesh))
				}
				sb.SetPointer(0.9, 0.9)
				tick()
				Expect(obj.Mesh.Material.Tag).To(Equal(scene.TagDefault))
			}

			box, err := sb.SpawnRandomBox()
			Expect(err).NotTo(HaveOccurred())
			return box.Body.Position, box.Mesh.Scale
		}

		It("does not shift later random spawns when hovering", func() {
			pos, scale := spawnAfterHovering(false)
			hoveredPos, hoveredScale := spawnAfterHovering(true)
			Expect(hoveredPos).To(Equal(pos))
			Expect(hoveredScale).To(Equal(scale))
		})
	})

	Describe("picking", func() {
		var forward mgl64.Vec3

		BeforeEach(func() {
			build(emptyConfig(sandbox.FloorNone))
			forward = sb.Camera().WorldDirection()
		})

		It("leaves every body alone when nothing is hovered", func() {
			a, _ := sb.SpawnSphere(0.5, mgl64.Vec3{0, 0, 0})
			b, _ := sb.SpawnBox(1, 1, 1, mgl64.Vec3{3, 0, 0})
			a.Body.Velocity = mgl64.Vec3{1, 2, 3}
			va, vb := a.Body.Velocity, b.Body.Velocity

			Expect(sb.Hovered()).To(BeNil())
			Expect(sb.Click()).To(BeFalse())
			Expect(a.Body.Velocity).To(Equal(va))
			Expect(b.Body.Velocity).To(Equal(vb))
		})

		It("highlights at most one mesh, the nearest under the pointer", func() {
			var objs []*sandbox.TrackedObject
			for _, d := range []float64{-1.5, 0, 1.5} {
				obj, err := sb.SpawnSphere(0.3, forward.Mul(d))
				Expect(err).NotTo(HaveOccurred())
				objs = append(objs, obj)
			}

			sb.SetPointer(0, 0)
			tick()
			Expect(highlighted(sb.Registry())).To(Equal(1))
			Expect(sb.Hovered()).To(BeIdenticalTo(objs[0].Mesh))

			for _, p := range [][2]float64{{0.9, 0.9}, {0, 0}, {-0.2, 0.1}, {0, 0}} {
				sb.SetPointer(p[0], p[1])
				tick()
				Expect(highlighted(sb.Registry())).To(BeNumerically("<=", 1))
			}
		})

		It("pushes the hovered body along the camera's horizontal facing", func() {
			obj, _ := sb.SpawnSphere(0.5, mgl64.Vec3{0, 0, 0})
			sb.SetPointer(0, 0)
			tick()
			Expect(sb.Hovered()).To(BeIdenticalTo(obj.Mesh))

			vy := obj.Body.Velocity.Y()
			Expect(sb.Click()).To(BeTrue())
			Expect(obj.Body.Velocity.X()).To(BeNumerically(">", 5))
			Expect(obj.Body.Velocity.Z()).To(BeNumerically("<", -5))
			Expect(obj.Body.Velocity.Y()).To(Equal(vy))
		})

		It("ignores a click on a mesh that was removed", func() {
			obj, _ := sb.SpawnSphere(0.5, mgl64.Vec3{0, 0, 0})
			sb.SetPointer(0, 0)
			tick()
			sb.Remove(obj)
			Expect(sb.Hovered()).To(BeNil())
			Expect(sb.Click()).To(BeFalse())
		})

		It("clamps strength and bounce", func() {
			sb.SetStrength(5000)
			Expect(sb.Strength()).To(Equal(sandbox.MaxStrength))
			sb.SetStrength(-3)
			Expect(sb.Strength()).To(Equal(sandbox.MinStrength))
			sb.SetBounce(9)
			Expect(sb.Bounce()).To(Equal(sandbox.MaxBounce))
			sb.SetBounce(-1)
			Expect(sb.Bounce()).To(Equal(sandbox.MinBounce))
		})
	})
})
