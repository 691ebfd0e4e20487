package models

// CategoryAmounts holds a per-reservation-category figure (fees or cutoffs).
type CategoryAmounts struct {
	General float64 `json:"general"`
	SCST    float64 `json:"sc_st"`
	OBC     float64 `json:"obc"`
}

// College is the canonical, internal form of a college record.
//
// External sources and the bundled seed file are mapped into this
// structure first, then written to the DB from this representation.
type College struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	Location    string          `json:"location"`
	District    string          `json:"district"`
	State       string          `json:"state"`
	Type        string          `json:"type"`
	Established *int            `json:"established,omitempty"` // unset when the source has no parseable year
	Students    int             `json:"students"`
	Rating      float64         `json:"rating"`
	Facilities  []string        `json:"facilities"`
	Programs    []string        `json:"programs"`
	Medium      []string        `json:"medium"`
	Fees        CategoryAmounts `json:"fees"`
	Cutoffs     CategoryAmounts `json:"cutoffs"`
	Website     string          `json:"website,omitempty"`
	Raw         map[string]any  `json:"raw,omitempty"` // unmapped source record, kept for downstream consumers
}

// StaticCollege is a record of the bundled seed file. Rating is nil when the
// record carries none, so an explicit 0 survives.
type StaticCollege struct {
	College
	Rating *float64 `json:"rating,omitempty"`
}
