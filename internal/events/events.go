package events

import "time"

const (
	TypeSavedCollege  = "saved.college"
	TypeSavedMaterial = "saved.material"
)

// SavedEvent is pushed to a user's live connections after a toggle.
type SavedEvent struct {
	Type   string    `json:"type"`
	UserID string    `json:"user_id"`
	ItemID string    `json:"item_id"`
	Saved  bool      `json:"saved"`
	At     time.Time `json:"at"`
}

// Publisher is what handlers depend on; a nil Publisher is allowed.
type Publisher interface {
	Publish(ev SavedEvent)
}
