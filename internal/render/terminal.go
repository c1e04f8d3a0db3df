// Package render draws a scene into the terminal as braille wireframes.
package render

import (
	"sort"

	"github.com/san-kum/rigidbox/internal/scene"
)

// Terminal renders a scene onto a braille canvas. The last frame is kept
// until the next Render call so the host can print it.
type Terminal struct {
	canvas *Canvas
	frames int
}

func NewTerminal(cols, rows int) *Terminal {
	return &Terminal{canvas: NewCanvas(cols, rows)}
}

// Resize changes the canvas size in terminal cells.
func (t *Terminal) Resize(cols, rows int) { t.canvas.Resize(cols, rows) }

// Size returns the canvas size in terminal cells.
func (t *Terminal) Size() (int, int) { return t.canvas.Width, t.canvas.Height }

// Aspect is the width-to-height ratio of the drawable area. Braille dots are
// close to square, so this is the ratio of the pixel grid.
func (t *Terminal) Aspect() float64 {
	pw, ph := t.canvas.PixelSize()
	return float64(pw) / float64(ph)
}

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
	color          string
}

// Render draws every mesh of s as seen from cam, far edges first so nearer
// outlines win the cell colour.
func (t *Terminal) Render(s *scene.Scene, cam *scene.Camera, _ float64) {
	t.frames++
	t.canvas.Clear()

	pw, ph := t.canvas.PixelSize()
	var edges []projectedEdge
	for _, m := range s.Meshes() {
		w := MeshWireframe(m)
		for _, e := range w.Edges {
			a, okA := cam.Project(e.Start)
			b, okB := cam.Project(e.End)
			if !okA || !okB {
				continue
			}
			x1, y1 := toPixels(a.X(), a.Y(), pw, ph)
			x2, y2 := toPixels(b.X(), b.Y(), pw, ph)
			edges = append(edges, projectedEdge{x1, y1, x2, y2, (a.Z() + b.Z()) / 2, w.Color})
		}
	}
	sort.SliceStable(edges, func(i, j int) bool { return edges[i].depth > edges[j].depth })
	for _, e := range edges {
		if offscreen(e, pw, ph) {
			continue
		}
		t.canvas.SetColor(e.color)
		t.canvas.DrawLine(e.x1, e.y1, e.x2, e.y2)
	}
	t.canvas.SetColor("")
}

func toPixels(x, y float64, pw, ph int) (int, int) {
	px := int((x + 1) / 2 * float64(pw))
	py := int((1 - y) / 2 * float64(ph))
	return px, py
}

// offscreen also drops edges that project absurdly far, which happens when a
// vertex sits just in front of the near plane.
func offscreen(e projectedEdge, pw, ph int) bool {
	limit := 8 * (pw + ph)
	for _, v := range [4]int{e.x1, e.y1, e.x2, e.y2} {
		if v < -limit || v > limit {
			return true
		}
	}
	return (e.x1 < 0 && e.x2 < 0) || (e.y1 < 0 && e.y2 < 0) ||
		(e.x1 >= pw && e.x2 >= pw) || (e.y1 >= ph && e.y2 >= ph)
}

func (t *Terminal) Frames() int { return t.frames }

func (t *Terminal) String() string { return t.canvas.String() }

func (t *Terminal) Plain() string { return t.canvas.Plain() }
