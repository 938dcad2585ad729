package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/isecsim/internal/sim"
)

type ExportData struct {
	RunMetadata
	Snapshots []sim.Snapshot `json:"snapshots"`
}

// ExportJSON writes a run's metadata and full history as indented JSON.
func ExportJSON(w io.Writer, meta *RunMetadata, snapshots []sim.Snapshot) error {
	data := ExportData{
		RunMetadata: *meta,
		Snapshots:   snapshots,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
