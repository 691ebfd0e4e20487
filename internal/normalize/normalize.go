// Package normalize maps externally sourced college records, keyed with an
// open and inconsistent vocabulary, into models.College.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"pathfinder/pkg/models"
)

const establishedMarker = "year of establishment"

// Candidate source keys per canonical field, in priority order.
var (
	nameKeys     = []string{"College Name", "College_Name", "University Name", "University_Name"}
	locationKeys = []string{"Location", "Address"}
	districtKeys = []string{"District"}
	stateKeys    = []string{"State"}
	programKeys  = []string{"Specialised in"}
	ratingKeys   = []string{"Rating"}
	studentKeys  = []string{"Students"}
	mediumKeys   = []string{"Medium"}
	typeKeys     = []string{"College Type", "University Type", "CollegeType"}
)

// Normalize never fails: missing or malformed fields degrade to defaults.
// The input map is kept on the result as Raw and is not modified.
func Normalize(raw map[string]any) models.College {
	c := models.College{
		Name:       text(raw, nameKeys...),
		Location:   text(raw, locationKeys...),
		District:   text(raw, districtKeys...),
		State:      text(raw, stateKeys...),
		Type:       text(raw, typeKeys...),
		Rating:     number(raw, ratingKeys...),
		Students:   int(number(raw, studentKeys...)),
		Programs:   single(raw, programKeys...),
		Medium:     single(raw, mediumKeys...),
		Facilities: []string{},
		Raw:        raw,
	}
	c.Established = established(raw)
	return c
}

func NormalizeAll(records []map[string]any) []models.College {
	out := make([]models.College, 0, len(records))
	for _, r := range records {
		out = append(out, Normalize(r))
	}
	return out
}

// lookup returns the first candidate holding a non-empty string or a number.
func lookup(raw map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		if s, ok := scalar(v); ok {
			return s, true
		}
	}
	return "", false
}

func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, t != ""
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(t), true
	default:
		return "", false
	}
}

func text(raw map[string]any, keys ...string) string {
	s, _ := lookup(raw, keys...)
	return s
}

func number(raw map[string]any, keys ...string) float64 {
	s, ok := lookup(raw, keys...)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func single(raw map[string]any, keys ...string) []string {
	if s, ok := lookup(raw, keys...); ok {
		return []string{s}
	}
	return []string{}
}

func established(raw map[string]any) *int {
	candidates := make([]string, 0, 5)
	if k, ok := establishedKey(raw); ok {
		trimmed := strings.TrimSpace(k)
		candidates = append(candidates, k, trimmed+"\n", trimmed)
	}
	candidates = append(candidates, "Year of Establishment\n", "Year of Establishment")

	s, ok := lookup(raw, candidates...)
	if !ok {
		return nil
	}
	year, ok := leadingInt(strings.TrimSpace(s))
	if !ok || year == 0 {
		return nil
	}
	return &year
}

// establishedKey finds the source key naming the establishment year. Keys are
// scanned in sorted order so the choice does not depend on map iteration.
func establishedKey(raw map[string]any) (string, bool) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		if strings.Contains(strings.ToLower(k), establishedMarker) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "", false
	}
	sort.Strings(keys)
	return keys[0], true
}

// leadingInt parses an optional sign followed by the leading run of digits,
// ignoring whatever follows ("1975\n" and "1975-76" both give 1975).
func leadingInt(s string) (int, bool) {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
