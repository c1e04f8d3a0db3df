package metrics

import (
	"context"
	"io"
	"math"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/rigidbox/internal/sandbox"
)

var gravity = mgl64.Vec3{0, -9.82, 0}

func frame(objs ...sandbox.ObjectState) sandbox.Frame {
	return sandbox.Frame{Objects: objs}
}

func ball(y float64, v [3]float64, sleeping bool) sandbox.ObjectState {
	return sandbox.ObjectState{
		Shape:    "sphere",
		Position: [3]float64{0, y, 0},
		Velocity: v,
		Mass:     1,
		Sleeping: sleeping,
	}
}

func TestFrameEnergy(t *testing.T) {
	tests := []struct {
		name string
		f    sandbox.Frame
		want float64
	}{
		{"empty", frame(), 0},
		{"resting at height", frame(ball(2, [3]float64{}, false)), 19.64},
		{"moving at ground", frame(ball(0, [3]float64{3, 4, 0}, false)), 12.5},
		{"two objects", frame(ball(2, [3]float64{}, false), ball(0, [3]float64{3, 4, 0}, false)), 32.14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FrameEnergy(tt.f, gravity); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("energy = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnergyReset(t *testing.T) {
	m := NewEnergy(gravity)

	m.Observe(frame(ball(2, [3]float64{}, false)))
	m.Observe(frame(ball(0, [3]float64{}, false)))
	if math.Abs(m.Value()-9.82) > 1e-9 {
		t.Errorf("mean energy = %v, want 9.82", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyLoss(t *testing.T) {
	m := NewEnergyLoss(gravity)
	m.Observe(frame(ball(2, [3]float64{}, false)))
	if m.Value() != 0 {
		t.Errorf("loss after one frame = %v", m.Value())
	}
	m.Observe(frame(ball(1, [3]float64{}, false)))
	if math.Abs(m.Value()-0.5) > 1e-9 {
		t.Errorf("loss = %v, want 0.5", m.Value())
	}
}

func TestStabilityAndActivity(t *testing.T) {
	s := NewStability(4)
	a := NewActivity()
	set := NewSet(s, a)

	set.OnFrame(frame(ball(1, [3]float64{3, 0, 0}, false), ball(1, [3]float64{}, true)))
	set.OnFrame(frame(ball(1, [3]float64{3, 4, 0}, false)))
	set.OnFrame(frame())

	vals := set.Values()
	if math.Abs(vals["stability"]-2.0/3) > 1e-9 {
		t.Errorf("stability = %v", vals["stability"])
	}
	if math.Abs(vals["activity"]-0.75) > 1e-9 {
		t.Errorf("activity = %v", vals["activity"])
	}

	set.Reset()
	if s.Value() != 1 || a.Value() != 0 {
		t.Errorf("after reset stability %v activity %v", s.Value(), a.Value())
	}
}

func TestSandboxDropDissipates(t *testing.T) {
	cfg := sandbox.DefaultConfig()
	set := Default(cfg.Gravity, 50)
	sb, err := sandbox.New(cfg,
		sandbox.WithClock(sandbox.NewManualClock()),
		sandbox.WithLogger(log.New(io.Discard)),
		sandbox.WithObserver(set),
	)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sb.Run(context.Background(), 180, 20*time.Millisecond); err != nil {
		t.Fatal(err)
	}

	vals := set.Values()
	for _, name := range []string{"energy", "energy_loss", "stability", "activity"} {
		if _, ok := vals[name]; !ok {
			t.Errorf("missing metric %q", name)
		}
	}
	if vals["energy_loss"] <= 0 {
		t.Errorf("energy_loss = %v, want positive after bouncing", vals["energy_loss"])
	}
	if vals["stability"] != 1 {
		t.Errorf("stability = %v", vals["stability"])
	}
}
