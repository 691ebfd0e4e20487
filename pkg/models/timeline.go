package models

import "time"

type TimelineEvent struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Type        string     `json:"type"` // admission, scholarship, exam, counseling
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Institution string     `json:"institution,omitempty"`
	Location    string     `json:"location,omitempty"`
	State       string     `json:"state,omitempty"`
	URL         string     `json:"url,omitempty"`
	IsActive    bool       `json:"isActive"`
}
