package sandbox

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/rigidbox/internal/physics"
	"github.com/san-kum/rigidbox/internal/scene"
)

// Renderer draws the scene once per tick.
type Renderer interface {
	Render(s *scene.Scene, cam *scene.Camera, dt float64)
}

type nopRenderer struct{}

func (nopRenderer) Render(*scene.Scene, *scene.Camera, float64) {}

// Sound is the single shared impact voice.
type Sound interface {
	SetVolume(v float64)
	Rewind()
	Play()
}

type nopSound struct{}

func (nopSound) SetVolume(float64) {}
func (nopSound) Rewind()           {}
func (nopSound) Play()             {}

type Option func(*Sandbox)

func WithRenderer(r Renderer) Option { return func(s *Sandbox) { s.renderer = r } }
func WithSound(snd Sound) Option     { return func(s *Sandbox) { s.sound = snd } }
func WithClock(c Clock) Option       { return func(s *Sandbox) { s.clock = c } }
func WithLogger(l *log.Logger) Option {
	return func(s *Sandbox) { s.logger = l }
}
func WithObserver(o Observer) Option {
	return func(s *Sandbox) { s.observers = append(s.observers, o) }
}

// WithRand replaces the generator behind random spawns. Palette picks draw
// from their own generator so hovering never shifts later spawns.
func WithRand(r *rand.Rand) Option { return func(s *Sandbox) { s.rng = r } }

// Sandbox owns the physics world, the scene and the registry pairing them.
type Sandbox struct {
	cfg      Config
	world    *physics.World
	scene    *scene.Scene
	camera   *scene.Camera
	registry *Registry
	picker   *Picker

	renderer  Renderer
	sound     Sound
	clock     Clock
	logger    *log.Logger
	rng       *rand.Rand
	colors    *rand.Rand
	observers []Observer

	sphereGeometry *scene.Geometry
	boxGeometry    *scene.Geometry
	planeGeometry  *scene.Geometry
	rest           *scene.Material
	highlight      *scene.Material
	palette        []*scene.Material
	floor          []StaticPart

	previous time.Duration
	ticks    int
	culled   int
}

// New builds the world, scene, camera and floor described by cfg. The initial
// sphere is spawned when cfg.InitialSphere is set.
func New(cfg Config, opts ...Option) (*Sandbox, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	wc := physics.DefaultWorldConfig()
	wc.Gravity = cfg.Gravity
	wc.AllowSleep = cfg.AllowSleep
	wc.Material = physics.ContactMaterial{Friction: cfg.Friction, Restitution: cfg.Restitution}
	wc.Broadphase = physics.NewSAPBroadphase()

	cam := scene.NewCamera(cfg.FovY, cfg.Aspect, 0.1, 100)
	cam.Position = cfg.CameraPosition

	s := &Sandbox{
		cfg:            cfg,
		world:          physics.NewWorld(wc),
		scene:          scene.New(),
		camera:         cam,
		registry:       NewRegistry(),
		renderer:       nopRenderer{},
		sound:          nopSound{},
		sphereGeometry: scene.NewSphereGeometry(20),
		boxGeometry:    scene.NewBoxGeometry(),
		planeGeometry:  scene.NewPlaneGeometry(10),
		rest:           &scene.Material{Name: "standard", Tag: scene.TagDefault, Color: "#d0d0d0"},
		highlight:      &scene.Material{Name: "highlight", Tag: scene.TagHighlighted, Color: "#ff3030"},
		palette:        newPalette(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = NewSystemClock()
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(cfg.Seed))
	}
	s.colors = rand.New(rand.NewSource(cfg.Seed ^ paletteSalt))
	s.picker = newPicker(s.camera, s.registry, s.highlight, s.restMaterial, cfg.Strength)

	if err := s.buildFloor(); err != nil {
		return nil, fmt.Errorf("build floor: %w", err)
	}
	if cfg.InitialSphere {
		if _, err := s.SpawnSphere(0.5, mgl64.Vec3{0, 3, 0}); err != nil {
			return nil, fmt.Errorf("initial sphere: %w", err)
		}
	}
	s.previous = s.clock.Elapsed()

	s.logger.Info("sandbox ready",
		"floor", cfg.Floor,
		"objects", s.registry.Len(),
		"restitution", cfg.Restitution,
		"speed_cap", cfg.SpeedCap,
	)
	return s, nil
}

// paletteSalt separates the palette stream from the spawn stream of a seed.
const paletteSalt = 0x5bd1e995

func newPalette() []*scene.Material {
	colors := []string{"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231", "#911eb4", "#42d4f4", "#f032e6"}
	out := make([]*scene.Material, len(colors))
	for i, c := range colors {
		out[i] = &scene.Material{Name: fmt.Sprintf("palette-%d", i), Tag: scene.TagDefault, Color: c}
	}
	return out
}

// restMaterial is what a mesh wears when it is not highlighted.
func (s *Sandbox) restMaterial() *scene.Material {
	if s.cfg.RandomPalette {
		return s.palette[s.colors.Intn(len(s.palette))]
	}
	return s.rest
}

func (s *Sandbox) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Sandbox) Config() Config           { return s.cfg }
func (s *Sandbox) World() *physics.World    { return s.world }
func (s *Sandbox) Scene() *scene.Scene      { return s.scene }
func (s *Sandbox) Camera() *scene.Camera    { return s.camera }
func (s *Sandbox) Registry() *Registry      { return s.registry }
func (s *Sandbox) Picker() *Picker          { return s.picker }
func (s *Sandbox) Floor() []StaticPart      { return s.floor }
func (s *Sandbox) Culled() int              { return s.culled }
func (s *Sandbox) Ticks() int               { return s.ticks }
func (s *Sandbox) Logger() *log.Logger      { return s.logger }
func (s *Sandbox) Strength() float64        { return s.picker.Strength() }
func (s *Sandbox) Bounce() float64          { return s.world.Material.Restitution }
func (s *Sandbox) SpeedCap() float64        { return s.cfg.SpeedCap }
func (s *Sandbox) SetStrength(v float64)    { s.picker.SetStrength(v) }
func (s *Sandbox) SetPointer(x, y float64)  { s.picker.SetPointer(x, y) }
func (s *Sandbox) Click() bool              { return s.picker.Click() }
func (s *Sandbox) Hovered() *scene.Mesh     { return s.picker.Hovered() }
func (s *Sandbox) SetAspect(aspect float64) { s.camera.Aspect = aspect }

// SetBounce sets the restitution of every contact, clamped to [0, 1.5].
func (s *Sandbox) SetBounce(v float64) {
	s.world.Material.Restitution = mgl64.Clamp(v, MinBounce, MaxBounce)
}

// SetSpeedCap sets the per-axis velocity clamp. Zero or less disables it.
func (s *Sandbox) SetSpeedCap(v float64) {
	if v < 0 {
		v = 0
	}
	s.cfg.SpeedCap = v
}

// Run ticks frames times, or until ctx is done when frames is zero. A
// ManualClock is advanced by frameTime before each tick; any other clock is
// paced by a ticker.
func (s *Sandbox) Run(ctx context.Context, frames int, frameTime time.Duration) (int, error) {
	if frameTime <= 0 {
		return 0, fmt.Errorf("%w: frame time %v", ErrInvalidConfig, frameTime)
	}
	manual, _ := s.clock.(*ManualClock)
	var tick <-chan time.Time
	if manual == nil {
		ticker := time.NewTicker(frameTime)
		defer ticker.Stop()
		tick = ticker.C
	}

	done := 0
	for frames <= 0 || done < frames {
		if manual != nil {
			select {
			case <-ctx.Done():
				return done, ctx.Err()
			default:
			}
			manual.Advance(frameTime)
		} else {
			select {
			case <-ctx.Done():
				return done, ctx.Err()
			case <-tick:
			}
		}
		s.Tick()
		done++
	}
	return done, nil
}
