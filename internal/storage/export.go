package storage

import (
	"encoding/json"
	"io"
)

// ExportData is the portable form of a run: its metadata plus, when
// they were stored, the sampled values.
type ExportData struct {
	RunMetadata
	Values []float64 `json:"values,omitempty"`
}

// ExportJSON writes a run as indented JSON. Values are included only
// when withValues is set and the run stored them.
func (s *Store) ExportJSON(w io.Writer, runID string, withValues bool) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}

	data := ExportData{RunMetadata: *meta}
	if withValues && meta.HasValues {
		values, err := s.LoadValues(runID)
		if err != nil {
			return err
		}
		data.Values = values
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
