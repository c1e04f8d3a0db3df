package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/rigidbox/internal/sandbox"
)

var ErrRunNotFound = errors.New("run not found")

var frameHeader = []string{
	"tick", "elapsed", "id", "shape",
	"x", "y", "z", "qx", "qy", "qz", "qw",
	"sx", "sy", "sz", "highlighted", "sleeping",
}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Profile   string             `json:"profile"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	FixedStep float64            `json:"fixed_step"`
	Duration  float64            `json:"duration"`
	Spawned   int                `json:"spawned"`
	Stats     map[string]float64 `json:"stats"`
}

// Save writes metadata.json and frames.csv under a new run directory and
// returns the run id.
func (s *Store) Save(meta RunMetadata, rec *Recorder) (string, error) {
	now := time.Now()
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%d", meta.Profile, now.UnixNano())
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = now
	}
	if meta.Stats == nil {
		meta.Stats = rec.Stats()
	}
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", fmt.Errorf("create run dir: %w", err)
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeFrames(filepath.Join(runDir, "frames.csv"), rec.Samples()); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeFrames(path string, samples []Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create frames: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(frameHeader); err != nil {
		return err
	}
	for _, smp := range samples {
		o := smp.Object
		row := []string{
			strconv.Itoa(smp.Tick),
			formatFloat(smp.Elapsed),
			strconv.Itoa(o.ID),
			o.Shape,
		}
		for _, v := range o.Position {
			row = append(row, formatFloat(v))
		}
		for _, v := range o.Quaternion {
			row = append(row, formatFloat(v))
		}
		for _, v := range o.Scale {
			row = append(row, formatFloat(v))
		}
		row = append(row, strconv.FormatBool(o.Highlighted), strconv.FormatBool(o.Sleeping))
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadFrames reads frames.csv back. Malformed rows are skipped.
func (s *Store) LoadFrames(runID string) ([]Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "frames.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read frames %s: %w", runID, err)
	}
	if len(records) < 2 {
		return []Sample{}, nil
	}

	samples := make([]Sample, 0, len(records)-1)
	for _, rec := range records[1:] {
		smp, ok := parseSample(rec)
		if !ok {
			continue
		}
		samples = append(samples, smp)
	}
	return samples, nil
}

func parseSample(rec []string) (Sample, bool) {
	if len(rec) != len(frameHeader) {
		return Sample{}, false
	}
	tick, err1 := strconv.Atoi(rec[0])
	id, err2 := strconv.Atoi(rec[2])
	if err1 != nil || err2 != nil {
		return Sample{}, false
	}
	floats := make([]float64, 0, 11)
	for _, field := range append([]string{rec[1]}, rec[4:14]...) {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Sample{}, false
		}
		floats = append(floats, v)
	}
	highlighted, err1 := strconv.ParseBool(rec[14])
	sleeping, err2 := strconv.ParseBool(rec[15])
	if err1 != nil || err2 != nil {
		return Sample{}, false
	}

	o := sandbox.ObjectState{
		ID:          id,
		Shape:       rec[3],
		Highlighted: highlighted,
		Sleeping:    sleeping,
	}
	copy(o.Position[:], floats[1:4])
	copy(o.Quaternion[:], floats[4:8])
	copy(o.Scale[:], floats[8:11])
	return Sample{Tick: tick, Elapsed: floats[0], Object: o}, true
}

// ExportJSON writes a run and all of its samples to a single file.
func ExportJSON(path string, meta RunMetadata, samples []Sample) error {
	return writeJSON(path, struct {
		Run     RunMetadata `json:"run"`
		Samples []Sample    `json:"samples"`
	}{meta, samples})
}
