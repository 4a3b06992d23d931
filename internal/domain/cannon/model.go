package cannon

import (
	"bytes"
	"encoding/json"

	"github.com/rpggio/cannonplot/internal/trajectory"
)

// Record is one cannon and the trajectory measurements recorded for it.
type Record struct {
	ID             string                     `json:"id"`
	Author         string                     `json:"author"`
	Name           string                     `json:"name"`
	Params         string                     `json:"params,omitempty"`
	Color          string                     `json:"color,omitempty"`
	Filename       string                     `json:"filename,omitempty"`
	TrajectoryData trajectory.Samples         `json:"trajectoryData"`
	OffsetData     trajectory.OffsetHistogram `json:"offsetData,omitempty"`
	CreatedAt      string                     `json:"createdAt"`
}

// UnmarshalJSON accepts numeric IDs, as written by older exports.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	aux := struct {
		*plain
		ID json.RawMessage `json:"id"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.ID = ""
	id := bytes.TrimSpace(aux.ID)
	switch {
	case len(id) == 0 || bytes.Equal(id, []byte("null")):
	case id[0] == '"':
		if err := json.Unmarshal(id, &r.ID); err != nil {
			return err
		}
	default:
		var n json.Number
		if err := json.Unmarshal(id, &n); err != nil {
			return err
		}
		r.ID = n.String()
	}
	return nil
}

// AuthorGroup collects the cannons published under one author.
type AuthorGroup struct {
	Author  string   `json:"author"`
	Cannons []Record `json:"cannons"`
}

// Stats summarizes the store contents.
type Stats struct {
	TotalCannons int      `json:"total_cannons"`
	AuthorCount  int      `json:"author_count"`
	Authors      []string `json:"authors"`
}

// ImportResult reports how many records an import kept.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
