package models

import (
	"encoding/json"
	"fmt"

	"github.com/omahdaoui/gradelink-go/pkg/gradelink/arabic"
)

// Mark is one extracted mark value. Valid is false when the student was
// absent or the OCR step produced no value for the category.
type Mark struct {
	Value float64
	Valid bool
}

// absentTokens are OCR outputs that mean "no mark": the Arabic absence
// abbreviation and its spellings.
var absentTokens = map[string]struct{}{
	"":      {},
	"absent": {},
	"غ":     {},
	"غائب":  {},
	"غ/م":   {},
}

// UnmarshalJSON accepts a JSON number, a numeric string (Arabic-Indic
// digits allowed), an absence token, or null.
func (m *Mark) UnmarshalJSON(data []byte) error {
	*m = Mark{}
	if string(data) == "null" {
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*m = Mark{Value: num, Valid: true}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("mark: expected number, string or null, got %s", data)
	}
	if _, ok := absentTokens[s]; ok {
		return nil
	}
	if v, ok := arabic.ParseNumeral(s); ok {
		*m = Mark{Value: v, Valid: true}
		return nil
	}
	return nil // unparseable text is treated as no value, not an error
}

// MarshalJSON emits the numeric value, or null when no value is present.
func (m Mark) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// ExtractedRecord is one student's OCR-derived data: a raw display name
// and the extracted mark per category. It is never mutated by this
// module.
type ExtractedRecord struct {
	Name  string                `json:"name"`
	Marks map[MarkCategory]Mark `json:"marks"`
}

// Mark returns the record's mark for cat; the zero Mark when missing.
func (r ExtractedRecord) Mark(cat MarkCategory) Mark {
	return r.Marks[cat]
}
