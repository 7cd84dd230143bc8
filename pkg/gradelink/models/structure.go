package models

// MarkCategory identifies one of the five assessment slots of a grading
// period: four written tests plus the continuous-activities score.
type MarkCategory string

const (
	Fard1      MarkCategory = "fard1"
	Fard2      MarkCategory = "fard2"
	Fard3      MarkCategory = "fard3"
	Fard4      MarkCategory = "fard4"
	Activities MarkCategory = "activities"
)

// Categories lists all mark categories in their canonical order.
var Categories = []MarkCategory{Fard1, Fard2, Fard3, Fard4, Activities}

// Layout tells which detection path produced a WorksheetStructure.
type Layout string

const (
	// LayoutMassar means a labeled header row was recognized.
	LayoutMassar Layout = "massar"
	// LayoutGeneric means column roles were inferred statistically.
	LayoutGeneric Layout = "generic"
)

// ColumnUnknown marks a column role that could not be located.
const ColumnUnknown = -1

// ExtraColumn is a candidate mark column not assigned to a standard
// category.
type ExtraColumn struct {
	// Index is the 0-based column index.
	Index int `json:"index"`
	// Header is the header cell text, possibly empty.
	Header string `json:"header"`
}

// WorksheetStructure is the inferred schema of a gradesheet. It is
// created once per successful detection and treated as immutable by
// preview and commit.
type WorksheetStructure struct {
	// Layout records which detection path matched.
	Layout Layout `json:"layout"`
	// HeaderRow is the 0-based header row index, or -1 when none was found.
	HeaderRow int `json:"header_row"`
	// Headers holds the header row cell texts, possibly empty strings.
	Headers []string `json:"headers,omitempty"`
	// IDColumn is the student identifier column, or ColumnUnknown.
	IDColumn int `json:"id_column"`
	// NameColumn is the student name column, or ColumnUnknown.
	NameColumn int `json:"name_column"`
	// MarkColumns maps each category to its column, or ColumnUnknown.
	MarkColumns map[MarkCategory]int `json:"mark_columns"`
	// Confidence holds a 0..1 confidence per category.
	Confidence map[MarkCategory]float64 `json:"confidence"`
	// Extra lists mark-like columns not assigned to a category.
	Extra []ExtraColumn `json:"extra,omitempty"`
}

// DataStart returns the first data row index: the row after the header
// row, or 0 when no header row exists.
func (s *WorksheetStructure) DataStart() int {
	if s.HeaderRow < 0 {
		return 0
	}
	return s.HeaderRow + 1
}

// Column returns the column index for cat and whether it is known.
func (s *WorksheetStructure) Column(cat MarkCategory) (int, bool) {
	col, ok := s.MarkColumns[cat]
	if !ok || col == ColumnUnknown {
		return ColumnUnknown, false
	}
	return col, true
}

// Header returns the header text for column col, or "" when unavailable.
func (s *WorksheetStructure) Header(col int) string {
	if col < 0 || col >= len(s.Headers) {
		return ""
	}
	return s.Headers[col]
}
