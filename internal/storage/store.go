package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/isecsim/internal/isec"
	"github.com/san-kum/isecsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	historyFile  = "temperatures.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type LayerInfo struct {
	Index       int     `json:"index"`
	Kind        string  `json:"kind"`
	Material    string  `json:"material"`
	Shape       string  `json:"shape"`
	Height      float64 `json:"height"`
	ThermalMass float64 `json:"thermal_mass"`
	Power       float64 `json:"power,omitempty"`
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	TimeStep  float64            `json:"time_step"`
	Steps     int                `json:"steps"`
	Layers    []LayerInfo        `json:"layers"`
	Metrics   map[string]float64 `json:"metrics"`
}

func describeLayers(stack *isec.Stack) []LayerInfo {
	infos := make([]LayerInfo, 0, stack.Len())
	for i, l := range stack.Layers() {
		rec := l.Record()
		infos = append(infos, LayerInfo{
			Index:       i,
			Kind:        string(l.Kind()),
			Material:    rec.MaterialName,
			Shape:       string(rec.ShapeFamily),
			Height:      rec.Height,
			ThermalMass: l.ThermalMass(),
			Power:       l.Power(),
		})
	}
	return infos
}

// Save writes a run under a new id: metadata.json plus temperatures.csv with
// one row per snapshot.
func (s *Store) Save(name string, cfg sim.Config, stack *isec.Stack, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", name, uuid.New().String()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Name:      name,
		Timestamp: time.Now(),
		TimeStep:  cfg.TimeStep,
		Steps:     result.StepsTaken,
		Layers:    describeLayers(stack),
		Metrics:   result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, historyFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, result.Snapshots); err != nil {
		return "", err
	}
	return runID, nil
}

// WriteCSV writes snapshots as time, T0..Tn-1, q0..qn-1 rows.
func WriteCSV(out io.Writer, snapshots []sim.Snapshot) error {
	w := csv.NewWriter(out)

	if len(snapshots) == 0 {
		w.Flush()
		return w.Error()
	}

	n := len(snapshots[0].Temperatures)
	header := []string{"time"}
	for i := 0; i < n; i++ {
		header = append(header, fmt.Sprintf("T%d", i))
	}
	for i := 0; i < n; i++ {
		header = append(header, fmt.Sprintf("q%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, snap := range snapshots {
		row := []string{strconv.FormatFloat(snap.Time, 'f', 6, 64)}
		for _, v := range snap.Temperatures {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		for _, v := range snap.Fluxes {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// HistoryPath is the location of a run's CSV history.
func (s *Store) HistoryPath(runID string) string {
	return filepath.Join(s.baseDir, runID, historyFile)
}

// LoadHistory reads back the snapshots of a run. Step numbers are the row
// order.
func (s *Store) LoadHistory(runID string) ([]sim.Snapshot, error) {
	file, err := os.Open(s.HistoryPath(runID))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []sim.Snapshot{}, nil
	}

	header := records[0]
	n := 0
	for _, col := range header {
		if strings.HasPrefix(col, "T") {
			n++
		}
	}

	snapshots := make([]sim.Snapshot, 0, len(records)-1)
	for i, record := range records[1:] {
		values := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d column %s: %w", historyFile, i+1, header[j], err)
			}
			values[j] = v
		}
		snapshots = append(snapshots, sim.Snapshot{
			Step:         i,
			Time:         values[0],
			Temperatures: values[1 : 1+n],
			Fluxes:       values[1+n:],
		})
	}

	return snapshots, nil
}
