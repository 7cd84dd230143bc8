// Package sheet adapts excelize workbooks to the detection and
// insertion engine: it reads a sheet's used range as a rectangular grid
// and batches cell writes behind an explicit flush.
package sheet

import (
	"github.com/xuri/excelize/v2"

	"github.com/omahdaoui/gradelink-go/pkg/gradelink/detect"
	"github.com/omahdaoui/gradelink-go/pkg/gradelink/models"
)

// Load reads the used range of sheetName as a grid. Rows are padded to
// the width of the widest row so columns are addressable everywhere.
func Load(f *excelize.File, sheetName string) (models.Grid, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	grid := make(models.Grid, len(rows))
	for i, row := range rows {
		padded := make([]string, width)
		copy(padded, row)
		grid[i] = padded
	}
	return grid, nil
}

// Writer batches cell writes into one sheet of a workbook. Writes stay
// in memory until Flush saves the file, which is the transport's single
// commit point.
type Writer struct {
	f       *excelize.File
	sheet   string
	pending int
}

// NewWriter returns a Writer targeting sheetName of f.
func NewWriter(f *excelize.File, sheetName string) *Writer {
	return &Writer{f: f, sheet: sheetName}
}

// SetCell stores value at 0-based (row, col).
func (w *Writer) SetCell(row, col int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return err
	}
	if err := w.f.SetCellValue(w.sheet, cell, value); err != nil {
		return err
	}
	w.pending++
	return nil
}

// Pending returns the number of writes buffered since the last Flush.
func (w *Writer) Pending() int {
	return w.pending
}

// Flush saves the workbook in place. A no-op when nothing was written.
func (w *Writer) Flush() error {
	if w.pending == 0 {
		return nil
	}
	if err := w.f.Save(); err != nil {
		return err
	}
	w.pending = 0
	return nil
}

// FindGradesheet scans the workbook's sheets in order and returns the
// first one whose grid passes structure detection, with its grid and
// structure. Returns the last detection error when none qualifies.
func FindGradesheet(f *excelize.File, d *detect.Detector) (string, models.Grid, *models.WorksheetStructure, error) {
	var lastErr error = &detect.DetectionError{Reason: "workbook has no sheets", Err: detect.ErrNotAGradesheet}
	for _, sheetName := range f.GetSheetList() {
		grid, err := Load(f, sheetName)
		if err != nil {
			lastErr = err
			continue
		}
		st, err := d.Detect(grid)
		if err != nil {
			if de, ok := err.(*detect.DetectionError); ok {
				de.Sheet = sheetName
			}
			lastErr = err
			continue
		}
		return sheetName, grid, st, nil
	}
	return "", nil, nil, lastErr
}
