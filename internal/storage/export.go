package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/invlap/internal/experiment"
)

type ExportData struct {
	*RunMetadata
	Series map[string][]float64 `json:"series"`
	Fields map[string][]float64 `json:"fields"`
}

func newExportData(meta *RunMetadata, result *experiment.Result) ExportData {
	fields := make(map[string][]float64, len(result.Fields))
	for name, f := range result.Fields {
		fields[name] = f
	}
	return ExportData{RunMetadata: meta, Series: result.Series, Fields: fields}
}

// WriteJSON encodes a run and everything it produced to w.
func WriteJSON(w io.Writer, meta *RunMetadata, result *experiment.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newExportData(meta, result))
}

func ExportJSON(path string, meta *RunMetadata, result *experiment.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, meta, result)
}

func ExportJSONStdout(meta *RunMetadata, result *experiment.Result) error {
	return WriteJSON(os.Stdout, meta, result)
}
