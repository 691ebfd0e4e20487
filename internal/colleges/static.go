package colleges

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"pathfinder/pkg/models"
)

//go:embed seed/colleges.json
var staticJSON []byte

// LoadStaticRecords returns the bundled read-only seed dataset. Records
// carry no id; saved lists reference them by name slug.
func LoadStaticRecords() ([]models.StaticCollege, error) {
	var out []models.StaticCollege
	if err := json.Unmarshal(staticJSON, &out); err != nil {
		return nil, fmt.Errorf("decode static colleges: %w", err)
	}
	for i := range out {
		if out[i].Facilities == nil {
			out[i].Facilities = []string{}
		}
		if out[i].Programs == nil {
			out[i].Programs = []string{}
		}
		if out[i].Medium == nil {
			out[i].Medium = []string{}
		}
	}
	return out, nil
}

// LoadStatic flattens the seed records into the form written to the DB.
func LoadStatic() ([]models.College, error) {
	records, err := LoadStaticRecords()
	if err != nil {
		return nil, err
	}
	out := make([]models.College, 0, len(records))
	for _, r := range records {
		c := r.College
		if r.Rating != nil {
			c.Rating = *r.Rating
		}
		out = append(out, c)
	}
	return out, nil
}
