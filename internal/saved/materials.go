package saved

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pathfinder/pkg/models"
)

type MaterialStore interface {
	SavedMaterials(ctx context.Context, email string) ([]json.RawMessage, error)
	UpdateSavedMaterials(ctx context.Context, email string, fn UpdateFunc) error
}

// Materials toggles study-material bookmarks. Entries are matched on their
// materialId field only.
type Materials struct {
	Store MaterialStore
	Now   func() time.Time
}

func NewMaterials(store MaterialStore) *Materials {
	return &Materials{Store: store, Now: time.Now}
}

// List returns the stored entries unchanged.
func (m *Materials) List(ctx context.Context, email string) ([]json.RawMessage, error) {
	return m.Store.SavedMaterials(ctx, email)
}

func (m *Materials) Toggle(ctx context.Context, email, materialID string) (ToggleResult, error) {
	if materialID == "" {
		return 0, ErrMissingMaterialID
	}

	var result ToggleResult
	err := m.Store.UpdateSavedMaterials(ctx, email, func(current []json.RawMessage) ([]json.RawMessage, error) {
		kept := make([]json.RawMessage, 0, len(current)+1)
		for _, raw := range current {
			if materialIDOf(raw) == materialID {
				continue
			}
			kept = append(kept, raw)
		}
		if len(kept) < len(current) {
			result = ToggleUnsaved
			return kept, nil
		}

		now := time.Now
		if m.Now != nil {
			now = m.Now
		}
		b, err := json.Marshal(models.SavedMaterialEntry{MaterialID: materialID, SavedAt: now().UTC()})
		if err != nil {
			return nil, fmt.Errorf("encode material entry: %w", err)
		}
		result = ToggleSaved
		return append(kept, b), nil
	})
	if err != nil {
		return 0, err
	}
	return result, nil
}

func materialIDOf(raw json.RawMessage) string {
	var e struct {
		MaterialID any `json:"materialId"`
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return ""
	}
	s, _ := e.MaterialID.(string)
	return s
}
