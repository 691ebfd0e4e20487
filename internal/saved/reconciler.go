// Package saved resolves a user's saved-college references into display
// summaries and toggles membership of colleges and study materials in the
// user's saved lists.
package saved

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pathfinder/internal/apierr"
	"pathfinder/pkg/logger"
	"pathfinder/pkg/models"
)

var (
	ErrUserNotFound      = apierr.NotFound("User not found")
	ErrMissingCollegeID  = apierr.Validation("collegeId is required")
	ErrMissingMaterialID = apierr.Validation("materialId is required")
)

// UpdateFunc receives the current stored list and returns its replacement.
type UpdateFunc func(current []json.RawMessage) ([]json.RawMessage, error)

// Store persists the per-user saved lists. Implementations return
// ErrUserNotFound when no user matches the email.
type Store interface {
	SavedColleges(ctx context.Context, email string) ([]json.RawMessage, error)
	UpdateSavedColleges(ctx context.Context, email string, fn UpdateFunc) error
}

// Directory is the live college lookup. FindSummaries runs one query for
// the whole id set and skips ids it does not know.
type Directory interface {
	FindSummaries(ctx context.Context, ids []string) ([]models.CollegeSummary, error)
}

type ToggleResult int

const (
	ToggleSaved ToggleResult = iota + 1
	ToggleUnsaved
)

func (r ToggleResult) Saved() bool { return r == ToggleSaved }

// Metadata is the optional display data stored alongside a new save.
type Metadata struct {
	Name     string
	Location string
	State    string
	Type     string
	Rating   *float64
}

type Reconciler struct {
	Store     Store
	Directory Directory
	Index     *SlugIndex
	Log       *logger.Logger
	Now       func() time.Time
}

func NewReconciler(store Store, dir Directory, index *SlugIndex, log *logger.Logger) *Reconciler {
	if log == nil {
		log = logger.Nop()
	}
	return &Reconciler{
		Store:     store,
		Directory: dir,
		Index:     index,
		Log:       log,
		Now:       time.Now,
	}
}

// List resolves every stored reference of the user into a summary,
// deduplicated by canonical id. Unresolvable references are dropped.
func (r *Reconciler) List(ctx context.Context, email string) ([]models.CollegeSummary, error) {
	refs, err := r.Store.SavedColleges(ctx, email)
	if err != nil {
		return nil, err
	}

	set := newSummarySet(len(refs))
	var queued []string

	for i, raw := range refs {
		ref, ok := ParseReference(raw)
		if !ok {
			r.Log.Debug("saved college reference dropped", "index", i, "reason", "not a reference")
			continue
		}

		switch ref.Kind {
		case KindRawID:
			queued = append(queued, ref.ID)
		case KindSlug:
			set.merge(r.Index.Resolve(ref.ID))
		case KindEmbedded:
			if ref.ID == "" {
				r.Log.Debug("saved college reference dropped", "index", i, "reason", "no identifier")
				continue
			}
			if IsStoreID(ref.ID) {
				queued = append(queued, ref.ID)
			} else if _, ok := r.Index.Lookup(SlugBase(ref.ID)); ok {
				// static fields fill what the entry left blank
				set.merge(r.Index.Resolve(ref.ID))
			}
			set.merge(ref.Summary())
		}
	}

	if len(queued) > 0 {
		live, err := r.Directory.FindSummaries(ctx, queued)
		if err != nil {
			return nil, apierr.Upstream("find saved colleges", err)
		}
		for _, s := range live {
			set.merge(s)
		}
		if missing := len(uniqueStrings(queued)) - len(live); missing > 0 {
			r.Log.Debug("saved colleges missing from store", "count", missing)
		}
	}

	return set.list(), nil
}

// Toggle saves collegeID when the user's list does not reference it and
// removes every reference to it otherwise. Identifiers compare as exact
// strings after trimming the input.
func (r *Reconciler) Toggle(ctx context.Context, email, collegeID string, meta Metadata) (ToggleResult, error) {
	target := strings.TrimSpace(collegeID)
	if target == "" {
		return 0, ErrMissingCollegeID
	}

	var result ToggleResult
	err := r.Store.UpdateSavedColleges(ctx, email, func(current []json.RawMessage) ([]json.RawMessage, error) {
		if containsID(current, target) {
			result = ToggleUnsaved
			return removeID(current, target), nil
		}

		entry := models.SavedCollegeEntry{
			CollegeID: target,
			SavedAt:   r.now(),
			Name:      meta.Name,
			Location:  meta.Location,
			State:     meta.State,
			Type:      meta.Type,
			Rating:    meta.Rating,
		}
		b, err := json.Marshal(entry)
		if err != nil {
			return nil, fmt.Errorf("encode saved entry: %w", err)
		}
		result = ToggleSaved
		return append(current, b), nil
	})
	if err != nil {
		return 0, err
	}
	return result, nil
}

func (r *Reconciler) now() time.Time {
	if r.Now == nil {
		return time.Now().UTC()
	}
	return r.Now().UTC()
}

func containsID(list []json.RawMessage, id string) bool {
	for _, raw := range list {
		if entryID(raw) == id {
			return true
		}
	}
	return false
}

// removeID drops every entry matching id along with blank entries. Entries
// whose identifier cannot be extracted are kept.
func removeID(list []json.RawMessage, id string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(list))
	for _, raw := range list {
		if isBlankEntry(raw) {
			continue
		}
		if entryID(raw) == id {
			continue
		}
		out = append(out, raw)
	}
	return out
}

// MergeSummaries combines two summaries for the same id: a non-empty
// incoming string wins, as does a present incoming rating or savedAt.
func MergeSummaries(existing, incoming models.CollegeSummary) models.CollegeSummary {
	out := existing
	if incoming.ID != "" {
		out.ID = incoming.ID
	}
	if incoming.CollegeID != "" {
		out.CollegeID = incoming.CollegeID
	}
	if incoming.Name != "" {
		out.Name = incoming.Name
	}
	if incoming.Location != "" {
		out.Location = incoming.Location
	}
	if incoming.State != "" {
		out.State = incoming.State
	}
	if incoming.Type != "" {
		out.Type = incoming.Type
	}
	if incoming.Rating != nil {
		out.Rating = incoming.Rating
	}
	if incoming.SavedAt != nil {
		out.SavedAt = incoming.SavedAt
	}
	return out
}

// summarySet keeps summaries keyed by collegeId in first-insertion order.
type summarySet struct {
	order []string
	byID  map[string]models.CollegeSummary
}

func newSummarySet(n int) *summarySet {
	return &summarySet{
		order: make([]string, 0, n),
		byID:  make(map[string]models.CollegeSummary, n),
	}
}

func (s *summarySet) merge(in models.CollegeSummary) {
	key := in.CollegeID
	if key == "" {
		return
	}
	existing, ok := s.byID[key]
	if !ok {
		s.order = append(s.order, key)
		s.byID[key] = in
		return
	}
	s.byID[key] = MergeSummaries(existing, in)
}

func (s *summarySet) list() []models.CollegeSummary {
	out := make([]models.CollegeSummary, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.byID[k])
	}
	return out
}

// SanitizeMetadata keeps only well-typed fields from a client metadata
// object: non-empty strings, and a rating given as a number or a numeric
// string. Anything else is ignored.
func SanitizeMetadata(raw json.RawMessage) Metadata {
	v, ok := decode(raw)
	if !ok {
		return Metadata{}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return Metadata{}
	}

	m := Metadata{
		Name:     str(obj, "name"),
		Location: str(obj, "location"),
		State:    str(obj, "state"),
		Type:     str(obj, "type"),
	}

	switch t := obj["rating"].(type) {
	case json.Number:
		if f, err := t.Float64(); err == nil && finite(f) {
			m.Rating = &f
		}
	case string:
		if s := strings.TrimSpace(t); s != "" {
			if f, err := strconv.ParseFloat(s, 64); err == nil && finite(f) {
				m.Rating = &f
			}
		}
	}
	return m
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
