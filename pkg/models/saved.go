package models

import "time"

// CollegeSummary is the resolved form of one saved-college reference.
// ID and CollegeID always carry the same canonical identifier.
type CollegeSummary struct {
	ID        string     `json:"id"`
	CollegeID string     `json:"collegeId"`
	Name      string     `json:"name"`
	Location  string     `json:"location"`
	State     string     `json:"state"`
	Type      string     `json:"type"`
	Rating    *float64   `json:"rating,omitempty"`
	SavedAt   *time.Time `json:"savedAt,omitempty"`
}

// SavedCollegeEntry is the object shape appended to a user's saved list.
type SavedCollegeEntry struct {
	CollegeID string    `json:"collegeId"`
	SavedAt   time.Time `json:"savedAt"`
	Name      string    `json:"name,omitempty"`
	Location  string    `json:"location,omitempty"`
	State     string    `json:"state,omitempty"`
	Type      string    `json:"type,omitempty"`
	Rating    *float64  `json:"rating,omitempty"`
}

type SavedMaterialEntry struct {
	MaterialID string    `json:"materialId"`
	SavedAt    time.Time `json:"savedAt"`
}
