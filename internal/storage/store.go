package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/invlap/internal/config"
	"github.com/san-kum/invlap/internal/experiment"
	"github.com/san-kum/invlap/internal/grid"
	"github.com/san-kum/invlap/internal/numeric"
)

const (
	metadataFile = "metadata.json"
	seriesFile   = "series.csv"
	fieldsFile   = "fields.csv"
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

type RunMetadata struct {
	ID        string             `json:"id"`
	Kind      string             `json:"kind"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Grid      grid.Grid          `json:"grid"`
	Config    *config.Config     `json:"config"`
	Scalars   map[string]float64 `json:"scalars"`
}

// Save writes one run directory: metadata with the scalars, the series in
// long form and the fields side by side.
func (s *Store) Save(cfg *config.Config, result *experiment.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", result.Kind, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Kind:      result.Kind,
		Timestamp: now,
		Seed:      cfg.Seed,
		Grid:      result.Grid,
		Config:    cfg,
		Scalars:   result.Scalars,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeSeries(filepath.Join(runDir, seriesFile), result.Series); err != nil {
		return "", err
	}
	if err := writeFields(filepath.Join(runDir, fieldsFile), result.Fields); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeSeries(path string, series map[string][]float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"series", "index", "value"}); err != nil {
		return err
	}
	for _, name := range sortedKeys(series) {
		for i, v := range series[name] {
			if err := w.Write([]string{name, strconv.Itoa(i), formatFloat(v)}); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func writeFields(path string, fields map[string]numeric.Field) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	names := sortedKeys(fields)
	if err := w.Write(append([]string{"index"}, names...)); err != nil {
		return err
	}

	rows := 0
	for _, name := range names {
		rows = max(rows, len(fields[name]))
	}
	for i := 0; i < rows; i++ {
		row := []string{strconv.Itoa(i)}
		for _, name := range names {
			f := fields[name]
			if i < len(f) {
				row = append(row, formatFloat(f[i]))
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns the stored runs, oldest first.
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

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func (s *Store) LoadSeries(runID string) (map[string][]float64, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, err
	}

	series := make(map[string][]float64)
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) != 3 {
			continue
		}
		v, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", seriesFile, i+1, err)
		}
		series[record[0]] = append(series[record[0]], v)
	}
	return series, nil
}

func (s *Store) LoadFields(runID string) (map[string]numeric.Field, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, fieldsFile))
	if err != nil {
		return nil, err
	}

	fields := make(map[string]numeric.Field)
	if len(records) == 0 {
		return fields, nil
	}
	header := records[0]
	for i := 1; i < len(records); i++ {
		for j := 1; j < len(records[i]) && j < len(header); j++ {
			if records[i][j] == "" {
				continue
			}
			v, err := strconv.ParseFloat(records[i][j], 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", fieldsFile, i+1, err)
			}
			fields[header[j]] = append(fields[header[j]], v)
		}
	}
	return fields, nil
}

// LoadResult reassembles the result of a stored run.
func (s *Store) LoadResult(runID string) (*RunMetadata, *experiment.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	series, err := s.LoadSeries(runID)
	if err != nil {
		return nil, nil, err
	}
	fields, err := s.LoadFields(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, &experiment.Result{
		Kind:    meta.Kind,
		Grid:    meta.Grid,
		Scalars: meta.Scalars,
		Series:  series,
		Fields:  fields,
	}, nil
}
