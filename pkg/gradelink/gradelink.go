// Package gradelink infers the column structure of loosely labeled
// gradesheets and writes OCR-extracted marks into the matching rows,
// linking noisy Arabic names to existing entries by fuzzy matching.
//
// The three operations are value-passing and independently re-entrant:
// DetectStructure returns an immutable WorksheetStructure that callers
// thread through PreviewInsertion and CommitInsertion explicitly. The
// grid is owned by the caller for the duration of one
// detect→preview/commit sequence; nothing is retained across calls.
package gradelink

import (
	"context"

	"github.com/omahdaoui/gradelink-go/pkg/gradelink/detect"
	"github.com/omahdaoui/gradelink-go/pkg/gradelink/insert"
	"github.com/omahdaoui/gradelink-go/pkg/gradelink/match"
	"github.com/omahdaoui/gradelink-go/pkg/gradelink/models"
)

// DetectStructure infers the worksheet structure of grid. It returns an
// error wrapping ErrNotAGradesheet when the grid does not look like a
// gradesheet.
func DetectStructure(grid models.Grid, cfg Config) (*models.WorksheetStructure, error) {
	return detect.NewDetector(cfg.Detect).Detect(grid)
}

// PreviewInsertion computes the planned writes for records against grid
// without side effects.
func PreviewInsertion(ctx context.Context, records []models.ExtractedRecord, st *models.WorksheetStructure, grid models.Grid, cfg Config) (*models.PreviewResult, error) {
	return newInserter(cfg).Preview(ctx, records, st, grid)
}

// CommitInsertion writes the planned values into grid and through w.
// Record-level failures are aggregated into the outcome; only
// sheet-level misuse (ErrStructureNotInitialized) or cancellation is
// returned as an error.
func CommitInsertion(ctx context.Context, records []models.ExtractedRecord, st *models.WorksheetStructure, grid models.Grid, w insert.CellWriter, cfg Config) (*models.InsertionOutcome, error) {
	return newInserter(cfg).InsertAll(ctx, records, st, grid, w)
}

func newInserter(cfg Config) *insert.Inserter {
	m := match.NewMatcher(match.NewScorer(cfg.Weights), cfg.Match)
	return insert.New(m, cfg.Logger)
}
