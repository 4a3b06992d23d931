package cannon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rpggio/cannonplot/internal/trajectory"
)

// ParseImport reads an import file. The payload is a JSON array of records,
// or an object whose "cannons" field holds that array. Records that fail to
// decode are dropped; the rest are returned in file order.
func ParseImport(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading import: %w", err)
	}
	data = bytes.TrimSpace(data)

	var entries []json.RawMessage
	switch {
	case len(data) > 0 && data[0] == '[':
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
		}
	case len(data) > 0 && data[0] == '{':
		var envelope struct {
			Cannons []json.RawMessage `json:"cannons"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil || envelope.Cannons == nil {
			return nil, fmt.Errorf("%w: expected an array of cannons", ErrInvalidImport)
		}
		entries = envelope.Cannons
	default:
		return nil, fmt.Errorf("%w: expected an array of cannons", ErrInvalidImport)
	}

	recs := make([]Record, 0, len(entries))
	for _, entry := range entries {
		var rec Record
		if err := json.Unmarshal(entry, &rec); err != nil {
			continue
		}
		if rec.TrajectoryData == nil {
			rec.TrajectoryData = trajectory.Samples{}
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// WriteExport writes recs as an indented JSON array.
func WriteExport(w io.Writer, recs []Record) error {
	if recs == nil {
		recs = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(recs); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}

// ExportFilename names an export file for the given day.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("minecraft-cannons-%s.json", now.Format("2006-01-02"))
}
