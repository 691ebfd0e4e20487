package saved

import (
	"regexp"
	"strings"

	"pathfinder/pkg/models"
)

var (
	numericSuffix = regexp.MustCompile(`-\d+$`)
	embeddedIDTag = regexp.MustCompile(`(?i)\(id: c (\d+)\)`)
	wordInitial   = regexp.MustCompile(`\b[a-z]`)
)

// NameSlug lower-cases a college name and joins its words with hyphens.
func NameSlug(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}

// SlugBase strips the optional "college-" prefix and a trailing "-<digits>"
// suffix from a slug reference.
func SlugBase(ref string) string {
	s := strings.TrimPrefix(strings.TrimSpace(ref), "college-")
	return numericSuffix.ReplaceAllString(s, "")
}

// FallbackName turns an unresolvable slug back into a readable title,
// e.g. "unknown-college-9" gives "Unknown College".
func FallbackName(ref string) string {
	spaced := strings.Join(strings.Fields(strings.ReplaceAll(SlugBase(ref), "-", " ")), " ")
	restored := embeddedIDTag.ReplaceAllString(spaced, "(Id: C-$1)")
	return wordInitial.ReplaceAllStringFunc(restored, strings.ToUpper)
}

// SlugIndex maps the name slug of every static college to its record. It is
// built once and only read afterwards.
type SlugIndex struct {
	bySlug map[string]models.StaticCollege
}

func NewSlugIndex(colleges []models.StaticCollege) *SlugIndex {
	idx := &SlugIndex{bySlug: make(map[string]models.StaticCollege, len(colleges))}
	for _, c := range colleges {
		if slug := NameSlug(c.Name); slug != "" {
			idx.bySlug[slug] = c
		}
	}
	return idx
}

func (ix *SlugIndex) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.bySlug)
}

func (ix *SlugIndex) Lookup(base string) (models.StaticCollege, bool) {
	if ix == nil {
		return models.StaticCollege{}, false
	}
	c, ok := ix.bySlug[base]
	return c, ok
}

// Resolve builds the summary for a slug reference. The summary id is always
// the reference itself; unmatched slugs get a synthesized name.
func (ix *SlugIndex) Resolve(ref string) models.CollegeSummary {
	ref = strings.TrimSpace(ref)
	s := models.CollegeSummary{ID: ref, CollegeID: ref}

	c, ok := ix.Lookup(SlugBase(ref))
	if !ok {
		s.Name = FallbackName(ref)
		return s
	}

	s.Name = c.Name
	if s.Name == "" {
		s.Name = ref
	}
	s.Location = c.Location
	if s.Location == "" {
		s.Location = c.District
	}
	s.State = c.State
	s.Type = c.Type
	if c.Rating != nil {
		r := *c.Rating
		s.Rating = &r
	}
	return s
}
