package models

// MatchResult resolves one extracted record to a grid row.
type MatchResult struct {
	// Row is the 0-based grid row index; meaningless when Found is false.
	Row int `json:"row"`
	// Confidence is 1.0 for exact matches and the similarity score for
	// fuzzy ones.
	Confidence float64 `json:"confidence"`
	Found      bool    `json:"found"`
}

// PreviewMark is the planned write for one record and one category.
type PreviewMark struct {
	Category MarkCategory `json:"category"`
	// Value is the formatted value that would be written, "" when absent.
	Value string `json:"value,omitempty"`
	// Column is the target column, or ColumnUnknown.
	Column int `json:"column"`
	// Header is the target column's header text, possibly empty.
	Header     string `json:"header,omitempty"`
	WillInsert bool   `json:"will_insert"`
}

// PreviewEntry is the planned mapping for one extracted record.
type PreviewEntry struct {
	Name  string        `json:"name"`
	Row   int           `json:"row"`
	Found bool          `json:"found"`
	Marks []PreviewMark `json:"marks"`
}

// PreviewResult is a dry run of an insertion pass.
type PreviewResult struct {
	Entries []PreviewEntry `json:"entries"`
	// Found and NotFound count resolved and unresolved records.
	Found    int `json:"found"`
	NotFound int `json:"not_found"`
	// WillInsert counts mark values that commit would write.
	WillInsert int `json:"will_insert"`
}

// InsertionOutcome aggregates one commit pass. Record-level failures are
// counted here, never raised as errors.
type InsertionOutcome struct {
	// RunID tags the pass for log correlation.
	RunID string `json:"run_id,omitempty"`
	// Matched counts records resolved to a row.
	Matched int `json:"matched"`
	// Inserted counts mark values actually written.
	Inserted int `json:"inserted"`
	// NotFound counts records with no resolved row; NotFoundNames lists
	// their display names for manual follow-up.
	NotFound      int      `json:"not_found"`
	NotFoundNames []string `json:"not_found_names,omitempty"`
	// WriteErrors counts cell writes refused by the transport. Commit is
	// best-effort; a mid-batch failure leaves earlier writes in place.
	WriteErrors int `json:"write_errors"`
}
