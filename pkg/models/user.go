package models

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	TokenVersion int       `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is stored as a JSON document on the user row.
type Profile struct {
	Email            string   `json:"email"`
	Name             string   `json:"name,omitempty"`
	Age              *int     `json:"age,omitempty"`
	Gender           string   `json:"gender,omitempty"`
	Class            string   `json:"class,omitempty"`
	Location         string   `json:"location,omitempty"`
	State            string   `json:"state,omitempty"`
	Interests        []string `json:"interests"`
	StreamPreference string   `json:"streamPreference,omitempty"`
	CareerGoals      string   `json:"careerGoals,omitempty"`
	Strengths        []string `json:"strengths,omitempty"`
	Achievements     []string `json:"achievements,omitempty"`
}
