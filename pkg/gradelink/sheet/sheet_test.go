package sheet

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/omahdaoui/gradelink-go/pkg/gradelink/detect"
	"github.com/omahdaoui/gradelink-go/pkg/gradelink/models"
)

var massarHeaders = []string{"رقم", "اسم التلميذ", "الفرض 1", "الفرض 2", "الأنشطة"}

var rosterNames = []string{
	"محمد العلوي", "فاطمة الزهراء", "يوسف بناني", "خديجة الفاسي",
	"احمد الادريسي", "سلمى التازي", "عمر الصقلي", "زينب العمراني",
}

// writeGradesheet fills sheetName of f with a Massar-shaped roster.
func writeGradesheet(t *testing.T, f *excelize.File, sheetName string) {
	t.Helper()
	for col, h := range massarHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			t.Fatalf("Failed to set header cell: %v", err)
		}
	}
	for i, name := range rosterNames {
		row := i + 2
		cells := map[int]interface{}{
			1: i + 1,
			2: name,
			3: 8 + i%5,
		}
		for col, v := range cells {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				t.Fatalf("Failed to set data cell: %v", err)
			}
		}
	}
}

func TestLoadPadsRows(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	writeGradesheet(t, f, sheetName)

	tmpFile := filepath.Join(t.TempDir(), "gradesheet.xlsx")
	if err := f.SaveAs(tmpFile); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}

	f2, err := excelize.OpenFile(tmpFile)
	if err != nil {
		t.Fatalf("Failed to open test file: %v", err)
	}
	defer f2.Close()

	grid, err := Load(f2, sheetName)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if grid.RowCount() != len(rosterNames)+1 {
		t.Fatalf("Expected %d rows, got %d", len(rosterNames)+1, grid.RowCount())
	}
	// Data rows carry no values past column 3, but every row must still
	// span the header's width.
	width := len(massarHeaders)
	for i, row := range grid {
		if len(row) != width {
			t.Errorf("Row %d has width %d, expected %d", i, len(row), width)
		}
	}
	if got := grid.Cell(0, 1); got != "اسم التلميذ" {
		t.Errorf("Expected name header, got %q", got)
	}
	if got := grid.Cell(1, 1); got != rosterNames[0] {
		t.Errorf("Expected %q, got %q", rosterNames[0], got)
	}
	if got := grid.Cell(1, 4); got != "" {
		t.Errorf("Padded cell should be empty, got %q", got)
	}
}

func TestWriterRoundTrip(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	writeGradesheet(t, f, sheetName)

	tmpFile := filepath.Join(t.TempDir(), "gradesheet.xlsx")
	if err := f.SaveAs(tmpFile); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}

	f2, err := excelize.OpenFile(tmpFile)
	if err != nil {
		t.Fatalf("Failed to open test file: %v", err)
	}
	defer f2.Close()

	w := NewWriter(f2, sheetName)
	if err := w.SetCell(1, 3, "12.50"); err != nil {
		t.Fatalf("SetCell failed: %v", err)
	}
	if err := w.SetCell(2, 4, "15.00"); err != nil {
		t.Fatalf("SetCell failed: %v", err)
	}
	if w.Pending() != 2 {
		t.Errorf("Expected 2 pending writes, got %d", w.Pending())
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if w.Pending() != 0 {
		t.Errorf("Pending should reset after flush, got %d", w.Pending())
	}
	// Flushing with nothing buffered is a no-op.
	if err := w.Flush(); err != nil {
		t.Fatalf("Empty flush failed: %v", err)
	}

	f3, err := excelize.OpenFile(tmpFile)
	if err != nil {
		t.Fatalf("Failed to reopen test file: %v", err)
	}
	defer f3.Close()

	grid, err := Load(f3, sheetName)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := grid.Cell(1, 3); got != "12.50" {
		t.Errorf("Expected \"12.50\" at (1,3), got %q", got)
	}
	if got := grid.Cell(2, 4); got != "15.00" {
		t.Errorf("Expected \"15.00\" at (2,4), got %q", got)
	}
}

func TestFindGradesheetSkipsJunkSheets(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	// The first sheet holds unrelated notes; the roster lives on the
	// second one.
	f.SetCellValue("Sheet1", "A1", "ملاحظات")
	f.SetCellValue("Sheet1", "A2", "لا شيء هنا")

	if _, err := f.NewSheet("النقط"); err != nil {
		t.Fatalf("Failed to add sheet: %v", err)
	}
	writeGradesheet(t, f, "النقط")

	tmpFile := filepath.Join(t.TempDir(), "workbook.xlsx")
	if err := f.SaveAs(tmpFile); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}

	f2, err := excelize.OpenFile(tmpFile)
	if err != nil {
		t.Fatalf("Failed to open test file: %v", err)
	}
	defer f2.Close()

	d := detect.NewDetector(detect.DefaultParams())
	sheetName, grid, st, err := FindGradesheet(f2, d)
	if err != nil {
		t.Fatalf("FindGradesheet failed: %v", err)
	}
	if sheetName != "النقط" {
		t.Errorf("Expected sheet النقط, got %q", sheetName)
	}
	if st.Layout != models.LayoutMassar {
		t.Errorf("Expected massar layout, got %v", st.Layout)
	}
	if st.NameColumn != 1 {
		t.Errorf("Expected name column 1, got %d", st.NameColumn)
	}
	if grid.RowCount() != len(rosterNames)+1 {
		t.Errorf("Expected %d rows, got %d", len(rosterNames)+1, grid.RowCount())
	}
}

func TestFindGradesheetReportsLastError(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetCellValue("Sheet1", "A1", "ملاحظات")

	tmpFile := filepath.Join(t.TempDir(), "empty.xlsx")
	if err := f.SaveAs(tmpFile); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}

	f2, err := excelize.OpenFile(tmpFile)
	if err != nil {
		t.Fatalf("Failed to open test file: %v", err)
	}
	defer f2.Close()

	d := detect.NewDetector(detect.DefaultParams())
	_, _, _, err = FindGradesheet(f2, d)
	if !errors.Is(err, detect.ErrNotAGradesheet) {
		t.Fatalf("Expected ErrNotAGradesheet, got %v", err)
	}
	var de *detect.DetectionError
	if !errors.As(err, &de) {
		t.Fatalf("Expected a DetectionError, got %T", err)
	}
	if de.Sheet != "Sheet1" {
		t.Errorf("Expected error stamped with Sheet1, got %q", de.Sheet)
	}
}
