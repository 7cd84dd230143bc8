// Package insert plans and performs mark writes: each extracted record
// is resolved to a row, then its values go into the inferred mark
// columns. Preview computes the plan without side effects; commit
// executes it best-effort, one record at a time.
package insert

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/omahdaoui/gradelink-go/pkg/gradelink/match"
	"github.com/omahdaoui/gradelink-go/pkg/gradelink/models"
)

// ErrStructureNotInitialized indicates preview or commit ran without a
// successfully detected structure. This is a caller sequencing bug, not
// a data condition, so it surfaces as a hard error.
var ErrStructureNotInitialized = errors.New("worksheet structure not initialized")

// CellWriter is the write half of the spreadsheet transport: a cell
// write addressed by 0-based (row, column). Implementations may batch
// writes until an explicit flush outside this package's control.
type CellWriter interface {
	SetCell(row, col int, value string) error
}

// Inserter orchestrates preview and commit passes.
type Inserter struct {
	matcher *match.Matcher
	log     *zap.Logger
}

// New returns an Inserter. A nil logger disables logging.
func New(matcher *match.Matcher, log *zap.Logger) *Inserter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Inserter{matcher: matcher, log: log}
}

// Preview computes the planned mapping for records against grid without
// writing anything. Every entry with WillInsert true corresponds to an
// actual write in a commit over the same grid.
func (in *Inserter) Preview(ctx context.Context, records []models.ExtractedRecord, st *models.WorksheetStructure, grid models.Grid) (*models.PreviewResult, error) {
	entries, err := in.plan(ctx, records, st, grid)
	if err != nil {
		return nil, err
	}

	res := &models.PreviewResult{Entries: entries}
	for _, e := range entries {
		if e.Found {
			res.Found++
		} else {
			res.NotFound++
		}
		for _, pm := range e.Marks {
			if pm.WillInsert {
				res.WillInsert++
			}
		}
	}
	return res, nil
}

// InsertAll writes the planned values into grid and through w. Records
// are independent: an unresolved name or a refused write is counted and
// the pass continues. There is no rollback; a mid-batch transport
// failure leaves earlier writes in place and shows up in WriteErrors.
func (in *Inserter) InsertAll(ctx context.Context, records []models.ExtractedRecord, st *models.WorksheetStructure, grid models.Grid, w CellWriter) (*models.InsertionOutcome, error) {
	entries, err := in.plan(ctx, records, st, grid)
	if err != nil {
		return nil, err
	}

	out := &models.InsertionOutcome{RunID: uuid.NewString()}
	log := in.log.With(zap.String("run", out.RunID))

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if !e.Found {
			out.NotFound++
			out.NotFoundNames = append(out.NotFoundNames, e.Name)
			log.Debug("record unresolved", zap.String("name", e.Name))
			continue
		}
		out.Matched++
		for _, pm := range e.Marks {
			if !pm.WillInsert {
				continue
			}
			if err := w.SetCell(e.Row, pm.Column, pm.Value); err != nil {
				out.WriteErrors++
				log.Warn("cell write refused",
					zap.Int("row", e.Row),
					zap.Int("col", pm.Column),
					zap.Error(err))
				continue
			}
			grid.SetCell(e.Row, pm.Column, pm.Value)
			out.Inserted++
		}
	}

	log.Info("insertion pass done",
		zap.Int("matched", out.Matched),
		zap.Int("inserted", out.Inserted),
		zap.Int("not_found", out.NotFound),
		zap.Int("write_errors", out.WriteErrors))
	return out, nil
}

// plan resolves every record to a row and decides, per category,
// whether a value would be written. Shared by preview and commit so
// the two always agree.
func (in *Inserter) plan(ctx context.Context, records []models.ExtractedRecord, st *models.WorksheetStructure, grid models.Grid) ([]models.PreviewEntry, error) {
	if st == nil || st.NameColumn == models.ColumnUnknown {
		return nil, ErrStructureNotInitialized
	}

	results, err := in.matcher.ResolveBatch(ctx, records, grid, st.NameColumn, st.DataStart())
	if err != nil {
		return nil, err
	}

	entries := make([]models.PreviewEntry, 0, len(records))
	for i, rec := range records {
		res := results[i]
		entry := models.PreviewEntry{
			Name:  rec.Name,
			Row:   res.Row,
			Found: res.Found,
			Marks: make([]models.PreviewMark, 0, len(models.Categories)),
		}
		for _, cat := range models.Categories {
			col, colKnown := st.Column(cat)
			mark := rec.Mark(cat)
			// Out-of-range values are treated as absent, not clamped.
			valid := mark.Valid && mark.Value >= 0 && mark.Value <= 20
			pm := models.PreviewMark{
				Category:   cat,
				Column:     col,
				Header:     st.Header(col),
				WillInsert: res.Found && colKnown && valid,
			}
			if valid {
				pm.Value = FormatMark(mark.Value)
			}
			entry.Marks = append(entry.Marks, pm)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// FormatMark renders a mark value the way it is written into cells:
// fixed two decimals.
func FormatMark(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
