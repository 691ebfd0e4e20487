package models

import (
	"encoding/json"
	"time"
)

type QuizResult struct {
	ID                    string          `json:"id"`
	UserID                string          `json:"userId"`
	Answers               json.RawMessage `json:"answers"`
	Results               json.RawMessage `json:"results"`
	StreamRecommendation  string          `json:"streamRecommendation,omitempty"`
	CareerRecommendations []string        `json:"careerRecommendations"`
	CreatedAt             time.Time       `json:"createdAt"`
}
