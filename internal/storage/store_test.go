package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/rigidbox/internal/sandbox"
)

func testFrames() []sandbox.Frame {
	obj := func(id int, y float64) sandbox.ObjectState {
		return sandbox.ObjectState{
			ID:         id,
			Shape:      "sphere",
			Position:   [3]float64{0.5, y, -0.25},
			Quaternion: [4]float64{0, 0, 0, 1},
			Scale:      [3]float64{0.5, 0.5, 0.5},
		}
	}
	return []sandbox.Frame{
		{Tick: 1, Elapsed: 0.02, Objects: []sandbox.ObjectState{obj(1, 3), obj(2, 1)}},
		{Tick: 2, Elapsed: 0.04, Objects: []sandbox.ObjectState{obj(1, 2.9)}, Culled: 1},
		{Tick: 3, Elapsed: 0.06, Objects: []sandbox.ObjectState{obj(1, 2.75)}},
	}
}

func TestRecorderSampling(t *testing.T) {
	rec := NewRecorder(2)
	for _, f := range testFrames() {
		rec.OnFrame(f)
	}

	if rec.Frames() != 3 {
		t.Errorf("frames = %d, want 3", rec.Frames())
	}
	// ticks 1 and 3 are kept
	if len(rec.Samples()) != 3 {
		t.Fatalf("samples = %d, want 3", len(rec.Samples()))
	}
	if got := rec.Counts(); len(got) != 2 || got[0] != 2 || got[1] != 1 {
		t.Errorf("counts = %v", got)
	}

	stats := rec.Stats()
	if stats["culled"] != 1 || stats["peak_objects"] != 2 {
		t.Errorf("stats = %v", stats)
	}
	if stats["lowest_y"] != 1 {
		t.Errorf("lowest_y = %v, want 1", stats["lowest_y"])
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	rec := NewRecorder(1)
	for _, f := range testFrames() {
		rec.OnFrame(f)
	}

	runID, err := st.Save(RunMetadata{Profile: "classic", Seed: 42, FixedStep: 1.0 / 60, Duration: 0.06}, rec)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Fatal("expected non-empty run id")
	}

	for _, name := range []string{"metadata.json", "frames.csv"} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Seed != 42 || meta.Profile != "classic" {
		t.Errorf("metadata = %+v", meta)
	}
	if meta.Stats["frames"] != 3 {
		t.Errorf("stats = %v", meta.Stats)
	}

	samples, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(samples) != 4 {
		t.Fatalf("samples = %d, want 4", len(samples))
	}
	if got := samples[2]; got.Tick != 2 || got.Object.Position[1] != 2.9 || got.Object.Shape != "sphere" {
		t.Errorf("sample 2 = %+v", got)
	}
	if samples[0].Object.Quaternion[3] != 1 {
		t.Errorf("quaternion = %v", samples[0].Object.Quaternion)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("empty store listed %d runs", len(runs))
	}

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "new"} {
		meta := RunMetadata{ID: id, Timestamp: base.Add(time.Duration(i) * time.Hour)}
		if _, err := st.Save(meta, NewRecorder(1)); err != nil {
			t.Fatal(err)
		}
	}

	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID != "new" {
		t.Errorf("runs = %+v, want newest first", runs)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("err = %v, want ErrRunNotFound", err)
	}
	if _, err := st.LoadFrames("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("err = %v, want ErrRunNotFound", err)
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	rec := NewRecorder(1)
	for _, f := range testFrames() {
		rec.OnFrame(f)
	}
	if err := ExportJSON(path, RunMetadata{ID: "x"}, rec.Samples()); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Run     RunMetadata `json:"run"`
		Samples []Sample    `json:"samples"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Run.ID != "x" || len(out.Samples) != 4 {
		t.Errorf("export = %+v", out)
	}
}
