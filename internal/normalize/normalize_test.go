package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathfinder/pkg/models"
)

func TestNormalize_YearWithTrailingNewline(t *testing.T) {
	raw := map[string]any{
		"College Name":          "ABC Govt College",
		"Year of Establishment": "1975\n",
	}

	got := Normalize(raw)

	assert.Equal(t, "ABC Govt College", got.Name)
	require.NotNil(t, got.Established)
	assert.Equal(t, 1975, *got.Established)
	assert.Equal(t, models.CategoryAmounts{}, got.Fees)
	assert.Equal(t, models.CategoryAmounts{}, got.Cutoffs)
	assert.Empty(t, got.Location)
	assert.Empty(t, got.State)
	assert.Equal(t, []string{}, got.Programs)
	assert.Equal(t, []string{}, got.Medium)
	assert.Equal(t, []string{}, got.Facilities)
	assert.Zero(t, got.Rating)
	assert.Zero(t, got.Students)
	assert.Equal(t, raw, got.Raw)
}

func TestNormalize_SynonymPriority(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want string
	}{
		{"first synonym wins", map[string]any{"College Name": "A", "University Name": "B"}, "A"},
		{"falls through to university", map[string]any{"University_Name": "U"}, "U"},
		{"empty string is skipped", map[string]any{"College Name": "", "College_Name": "C"}, "C"},
		{"nested value is absent", map[string]any{"College Name": map[string]any{"x": 1}, "University Name": "D"}, "D"},
		{"number is stringified", map[string]any{"College Name": float64(42)}, "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw).Name)
		})
	}
}

func TestNormalize_FieldMapping(t *testing.T) {
	raw := map[string]any{
		"University Name":        "Central University",
		"Address":                "Nagrota",
		"District":               "Jammu",
		"State":                  "Jammu and Kashmir",
		"Specialised in":         "Science",
		"Rating":                 "4.5",
		"Students":               json.Number("1200"),
		"Medium":                 "English",
		"University Type":        "Central",
		"year of establishment ": 2009,
	}

	got := Normalize(raw)

	assert.Equal(t, "Central University", got.Name)
	assert.Equal(t, "Nagrota", got.Location)
	assert.Equal(t, "Jammu", got.District)
	assert.Equal(t, "Jammu and Kashmir", got.State)
	assert.Equal(t, []string{"Science"}, got.Programs)
	assert.InDelta(t, 4.5, got.Rating, 1e-9)
	assert.Equal(t, 1200, got.Students)
	assert.Equal(t, []string{"English"}, got.Medium)
	assert.Equal(t, "Central", got.Type)
	require.NotNil(t, got.Established)
	assert.Equal(t, 2009, *got.Established)
}

func TestNormalize_EstablishedUnparseableIsUnset(t *testing.T) {
	for _, v := range []any{"unknown", "", nil, []any{1975}, "0"} {
		got := Normalize(map[string]any{"Year of Establishment": v})
		assert.Nil(t, got.Established, "value %#v", v)
	}
}

func TestNormalize_IsTotal(t *testing.T) {
	inputs := []map[string]any{
		nil,
		{},
		{"unrelated": "x", "other": 3},
		{
			"College Name":          []any{"x"},
			"Location":              nil,
			"District":              true,
			"State":                 map[string]any{},
			"Specialised in":        false,
			"Rating":                "NaN",
			"Students":              "lots",
			"Medium":                []string{"a"},
			"College Type":          struct{}{},
			"Year of Establishment": map[string]any{"y": 1},
		},
	}

	for _, in := range inputs {
		assert.NotPanics(t, func() {
			got := Normalize(in)
			_, err := json.Marshal(got)
			assert.NoError(t, err)
			assert.Zero(t, got.Rating)
			assert.Zero(t, got.Students)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	raw := map[string]any{
		"College_Name":            "Govt Degree College",
		"Location":                "Baramulla",
		"Year of Establishment\n": "1988",
		"Rating":                  3.9,
	}

	assert.Equal(t, Normalize(raw), Normalize(raw))
}

func TestNormalizeAll(t *testing.T) {
	got := NormalizeAll([]map[string]any{{"College Name": "A"}, {"College Name": "B"}})
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name)
	assert.Equal(t, "B", got[1].Name)
}
