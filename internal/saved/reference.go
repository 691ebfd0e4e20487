package saved

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pathfinder/pkg/models"
)

// Kind tags the three shapes a stored saved-college reference can take.
type Kind int

const (
	KindRawID    Kind = iota + 1 // bare store-native id string
	KindSlug                     // any other non-blank string
	KindEmbedded                 // object carrying its own display fields
)

func (k Kind) String() string {
	switch k {
	case KindRawID:
		return "raw_id"
	case KindSlug:
		return "slug"
	case KindEmbedded:
		return "embedded"
	default:
		return "unknown"
	}
}

// Embedded holds the display fields found on an object reference, already
// resolved through their fallbacks (title for name, district for location).
type Embedded struct {
	Name     string
	Location string
	State    string
	Type     string
	Rating   *float64
	SavedAt  *time.Time
}

type Reference struct {
	Kind     Kind
	ID       string // canonical identifier; may be empty for KindEmbedded
	Embedded *Embedded
}

// IsStoreID reports whether s has the format of a store-native identifier.
func IsStoreID(s string) bool {
	return primitive.IsValidObjectID(s)
}

var idKeys = []string{"collegeId", "_id", "id"}

// ParseReference classifies one stored list entry. It reports false for
// entries that are not references at all (null, numbers, booleans, arrays,
// blank strings, malformed JSON).
func ParseReference(raw json.RawMessage) (Reference, bool) {
	v, ok := decode(raw)
	if !ok {
		return Reference{}, false
	}

	switch t := v.(type) {
	case string:
		id := strings.TrimSpace(t)
		if id == "" {
			return Reference{}, false
		}
		if IsStoreID(id) {
			return Reference{Kind: KindRawID, ID: id}, true
		}
		return Reference{Kind: KindSlug, ID: id}, true

	case map[string]any:
		return Reference{
			Kind:     KindEmbedded,
			ID:       objectID(t),
			Embedded: embeddedFields(t),
		}, true

	default:
		return Reference{}, false
	}
}

// Summary builds the summary an embedded reference describes on its own.
func (r Reference) Summary() models.CollegeSummary {
	s := models.CollegeSummary{ID: r.ID, CollegeID: r.ID}
	if e := r.Embedded; e != nil {
		s.Name = e.Name
		s.Location = e.Location
		s.State = e.State
		s.Type = e.Type
		s.Rating = e.Rating
		s.SavedAt = e.SavedAt
	}
	return s
}

// entryID extracts the identifier the write path matches on: the trimmed
// string, or the object's id field. Anything else yields "".
func entryID(raw json.RawMessage) string {
	v, ok := decode(raw)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		return objectID(t)
	default:
		return ""
	}
}

// isBlankEntry reports entries with no content at all (null, "", false, 0).
func isBlankEntry(raw json.RawMessage) bool {
	v, ok := decode(raw)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	default:
		return false
	}
}

func decode(raw json.RawMessage) (any, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}

// objectID returns the first id field that coerces to a non-empty string.
func objectID(obj map[string]any) string {
	for _, k := range idKeys {
		v, ok := obj[k]
		if !ok || v == nil {
			continue
		}
		if id := idString(v); id != "" {
			return id
		}
	}
	return ""
}

func idString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		if f, err := t.Float64(); err == nil && f == 0 {
			return ""
		}
		return t.String()
	case bool:
		if !t {
			return ""
		}
		return "true"
	case map[string]any:
		// extended JSON form of an ObjectID
		if oid, ok := t["$oid"].(string); ok {
			return oid
		}
	}
	return ""
}

func embeddedFields(obj map[string]any) *Embedded {
	e := &Embedded{
		Name:     str(obj, "name"),
		Location: str(obj, "location"),
		State:    str(obj, "state"),
		Type:     str(obj, "type"),
		Rating:   embeddedRating(obj["rating"]),
		SavedAt:  timestamp(obj["savedAt"]),
	}
	if e.Name == "" {
		e.Name = str(obj, "title")
	}
	if e.Location == "" {
		e.Location = str(obj, "district")
	}
	if e.SavedAt == nil {
		e.SavedAt = timestamp(obj["createdAt"])
	}
	return e
}

func str(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

// embeddedRating keeps numeric ratings as stored. Numeric strings are parsed
// and a zero or unparseable string counts as no rating.
func embeddedRating(v any) *float64 {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil || !finite(f) {
			return nil
		}
		return &f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || f == 0 || !finite(f) {
			return nil
		}
		return &f
	default:
		return nil
	}
}

func timestamp(v any) *time.Time {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &ts
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
