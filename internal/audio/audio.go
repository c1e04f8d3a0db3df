// Package audio provides the impact sound shared by every spawned object.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	SampleRate = 44100
	// hitLength is the duration of the synthesized hit.
	hitLength = 250 * time.Millisecond
)

// HitSound is a single shared voice: playing it again restarts it from zero
// instead of layering a second copy. The waveform is synthesized in blocks by
// Render, which also drives the level meter, so no audio device is needed.
type HitSound struct {
	mu          sync.Mutex
	volume      float64
	position    time.Duration
	playing     bool
	plays       int
	filterState float64
	level       float64
	buf         []float32
	logger      *log.Logger
}

func NewHitSound(logger *log.Logger) *HitSound {
	if logger == nil {
		logger = log.Default()
	}
	return &HitSound{volume: 1, logger: logger}
}

// SetVolume clamps v to [0, 1].
func (h *HitSound) SetVolume(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.volume = math.Max(0, math.Min(v, 1))
}

// Rewind moves the playhead back to the start.
func (h *HitSound) Rewind() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.position = 0
	h.filterState = 0
}

func (h *HitSound) Play() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playing = true
	h.plays++
	h.logger.Debug("hit sound", "volume", h.volume, "plays", h.plays)
}

func (h *HitSound) Volume() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.volume
}

func (h *HitSound) Plays() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.plays
}

func (h *HitSound) Position() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.position
}

func (h *HitSound) Playing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playing
}

func (h *HitSound) advance(d time.Duration) {
	if !h.playing {
		return
	}
	h.position += d
	if h.position >= hitLength {
		h.position = hitLength
		h.playing = false
	}
}

// Render synthesizes d worth of samples, advances the playhead past them and
// returns their peak amplitude in [0, 1], which Level reports until the next
// call.
func (h *HitSound) Render(d time.Duration) float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := int(d.Seconds() * SampleRate)
	if n <= 0 {
		return h.level
	}
	if cap(h.buf) < n {
		h.buf = make([]float32, n)
	}
	out := h.buf[:n]
	h.fill(out)
	peak := 0.0
	for _, s := range out {
		peak = math.Max(peak, math.Abs(float64(s)))
	}
	h.level = math.Min(peak, 1)
	return h.level
}

// Level is the peak amplitude of the last rendered block, for meters.
func (h *HitSound) Level() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.level
}

// fill writes mono samples for the current playhead and advances it.
func (h *HitSound) fill(out []float32) {
	dt := 1.0 / float64(SampleRate)
	for i := range out {
		if !h.playing {
			out[i] = 0
			continue
		}
		t := h.position.Seconds()
		// low thud plus a brighter click, filtered so it is not harsh
		sample := 0.7*triangle(t*110) + 0.3*triangle(t*440)
		var filtered float64
		filtered, h.filterState = lpf(sample, 1800, dt, h.filterState)
		out[i] = float32(filtered * envelope(t) * h.volume)
		h.advance(time.Duration(dt * float64(time.Second)))
	}
}

func envelope(t float64) float64 {
	return math.Exp(-t / 0.06)
}

func triangle(phase float64) float64 {
	p := phase - math.Floor(phase)
	return 4.0*math.Abs(p-0.5) - 1.0
}

// Low Pass Filter (One Pole)
func lpf(sample, cutoff, dt, state float64) (float64, float64) {
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)
	out := state + alpha*(sample-state)
	return out, out
}
