package detect

import (
	"errors"
	"fmt"
	"testing"

	"github.com/omahdaoui/gradelink-go/pkg/gradelink/models"
)

func newTestDetector() *Detector {
	return NewDetector(DefaultParams())
}

// massarGrid is a labeled sheet in the canonical export layout: header
// row plus ten data rows.
func massarGrid() models.Grid {
	grid := models.Grid{
		{"رقم", "اسم التلميذ", "الفرض 1", "الفرض 2", "الفرض 3", "الأنشطة"},
	}
	names := []string{
		"محمد العلوي", "فاطمة الزهراء", "يوسف بناني", "مريم الفاسي", "عمر التازي",
		"خديجة الادريسي", "علي الرامي", "سلمى الحسني", "حمزة الصقلي", "نور العمراني",
	}
	for i, n := range names {
		grid = append(grid, []string{
			fmt.Sprint(i + 1), n, "12.5", "10", "14", "17",
		})
	}
	return grid
}

func TestDetectMassarLayout(t *testing.T) {
	st, err := newTestDetector().Detect(massarGrid())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if st.Layout != models.LayoutMassar {
		t.Errorf("layout = %s, expected massar", st.Layout)
	}
	if st.HeaderRow != 0 {
		t.Errorf("header row = %d, expected 0", st.HeaderRow)
	}
	if st.IDColumn != 0 {
		t.Errorf("id column = %d, expected 0", st.IDColumn)
	}
	if st.NameColumn != 1 {
		t.Errorf("name column = %d, expected 1", st.NameColumn)
	}

	expected := map[models.MarkCategory]int{
		models.Fard1:      2,
		models.Fard2:      3,
		models.Fard3:      4,
		models.Activities: 5,
	}
	for cat, col := range expected {
		if st.MarkColumns[cat] != col {
			t.Errorf("%s column = %d, expected %d", cat, st.MarkColumns[cat], col)
		}
		if st.Confidence[cat] < 0.9 {
			t.Errorf("%s confidence = %v, expected >= 0.9", cat, st.Confidence[cat])
		}
	}
	if col, ok := st.Column(models.Fard4); ok {
		t.Errorf("fard4 mapped to %d, expected unknown", col)
	}
}

func TestDetectHeaderSpellingVariants(t *testing.T) {
	grid := models.Grid{
		{"الرقم الترتيبي", "الاسم الكامل", "الفرض الأول", "الفرض الثاني", "الانشطة المندمجة"},
	}
	for i := 0; i < 8; i++ {
		grid = append(grid, []string{fmt.Sprint(i + 1), "محمد العلوي", "11", "9", "16"})
	}

	st, err := newTestDetector().Detect(grid)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if st.NameColumn != 1 {
		t.Errorf("name column = %d, expected 1", st.NameColumn)
	}
	if st.MarkColumns[models.Fard1] != 2 || st.MarkColumns[models.Fard2] != 3 {
		t.Errorf("fard columns = %d,%d, expected 2,3",
			st.MarkColumns[models.Fard1], st.MarkColumns[models.Fard2])
	}
	if st.MarkColumns[models.Activities] != 4 {
		t.Errorf("activities column = %d, expected 4", st.MarkColumns[models.Activities])
	}
}

func TestDetectExtraMarkColumns(t *testing.T) {
	grid := models.Grid{
		{"رقم", "اسم التلميذ", "الفرض 1", "امتحان تجريبي"},
	}
	for i := 0; i < 6; i++ {
		grid = append(grid, []string{fmt.Sprint(i + 1), "يوسف بناني", "12", "13"})
	}

	st, err := newTestDetector().Detect(grid)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(st.Extra) != 1 || st.Extra[0].Index != 3 {
		t.Fatalf("extra columns = %+v, expected the trial-exam column", st.Extra)
	}
}

// genericGrid has no header: sequential ids, names, and three numeric
// columns, the last of which runs markedly higher.
func genericGrid() models.Grid {
	names := []string{
		"محمد العلوي", "فاطمة الزهراء", "يوسف بناني", "مريم الفاسي", "عمر التازي",
		"خديجة الادريسي", "علي الرامي", "سلمى الحسني", "حمزة الصقلي", "نور العمراني",
		"انس المنصوري", "ايوب العمري",
	}
	grid := make(models.Grid, 0, len(names))
	for i, n := range names {
		fard1 := fmt.Sprintf("%.1f", 8.0+float64(i%5))
		fard2 := fmt.Sprintf("%.1f", 7.0+float64(i%4))
		activities := fmt.Sprintf("%.1f", 16.0+float64(i%3))
		grid = append(grid, []string{fmt.Sprint(i + 1), n, fard1, fard2, activities})
	}
	return grid
}

func TestDetectGenericLayout(t *testing.T) {
	st, err := newTestDetector().Detect(genericGrid())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if st.Layout != models.LayoutGeneric {
		t.Errorf("layout = %s, expected generic", st.Layout)
	}
	if st.HeaderRow != -1 {
		t.Errorf("header row = %d, expected -1", st.HeaderRow)
	}
	if st.NameColumn != 1 {
		t.Errorf("name column = %d, expected 1", st.NameColumn)
	}
	if st.IDColumn != 0 {
		t.Errorf("id column = %d, expected 0", st.IDColumn)
	}

	// The high-running column is reassigned to activities; the remaining
	// positional guesses are demoted.
	if st.MarkColumns[models.Activities] != 4 {
		t.Errorf("activities column = %d, expected 4", st.MarkColumns[models.Activities])
	}
	if st.Confidence[models.Activities] != 0.9 {
		t.Errorf("activities confidence = %v, expected 0.9", st.Confidence[models.Activities])
	}
	if st.MarkColumns[models.Fard1] != 2 || st.MarkColumns[models.Fard2] != 3 {
		t.Errorf("fard columns = %d,%d, expected 2,3",
			st.MarkColumns[models.Fard1], st.MarkColumns[models.Fard2])
	}
	if st.Confidence[models.Fard1] != 0.3 || st.Confidence[models.Fard2] != 0.3 {
		t.Errorf("demoted confidences = %v,%v, expected 0.3,0.3",
			st.Confidence[models.Fard1], st.Confidence[models.Fard2])
	}
}

func TestDetectGenericPositionalConfidence(t *testing.T) {
	// All mark columns in the same range: no activities reassignment,
	// positional confidences apply left to right.
	names := []string{
		"محمد العلوي", "فاطمة الزهراء", "يوسف بناني", "مريم الفاسي",
		"عمر التازي", "خديجة الادريسي", "علي الرامي", "سلمى الحسني",
	}
	grid := make(models.Grid, 0, len(names))
	for i, n := range names {
		grid = append(grid, []string{
			fmt.Sprint(i + 1), n,
			fmt.Sprintf("%d", 8+i%5),
			fmt.Sprintf("%d", 7+i%4),
			fmt.Sprintf("%d", 9+i%3),
		})
	}

	st, err := newTestDetector().Detect(grid)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if st.Confidence[models.Fard1] != 0.8 {
		t.Errorf("fard1 confidence = %v, expected 0.8", st.Confidence[models.Fard1])
	}
	if st.Confidence[models.Fard2] != 0.7 {
		t.Errorf("fard2 confidence = %v, expected 0.7", st.Confidence[models.Fard2])
	}
	if st.Confidence[models.Fard3] != 0.6 {
		t.Errorf("fard3 confidence = %v, expected 0.6", st.Confidence[models.Fard3])
	}
}

func TestDetectRejectsTinyGrid(t *testing.T) {
	grid := models.Grid{
		{"رقم", "اسم التلميذ", "الفرض 1"},
		{"1", "محمد العلوي", "12"},
	}
	_, err := newTestDetector().Detect(grid)
	if !errors.Is(err, ErrNotAGradesheet) {
		t.Fatalf("expected ErrNotAGradesheet, got %v", err)
	}
}

func TestDetectRejectsNonGradesheet(t *testing.T) {
	// A numeric matrix with no name-like column.
	grid := make(models.Grid, 0, 8)
	for i := 0; i < 8; i++ {
		grid = append(grid, []string{
			fmt.Sprint(i * 3), fmt.Sprint(i * 7), fmt.Sprint(i * 11),
		})
	}
	_, err := newTestDetector().Detect(grid)
	if !errors.Is(err, ErrNotAGradesheet) {
		t.Fatalf("expected ErrNotAGradesheet, got %v", err)
	}

	var de *DetectionError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DetectionError, got %T", err)
	}
}

func TestDetectDeterministic(t *testing.T) {
	d := newTestDetector()
	first, err := d.Detect(massarGrid())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := d.Detect(massarGrid())
		if err != nil {
			t.Fatalf("Detect failed: %v", err)
		}
		for _, cat := range models.Categories {
			if first.MarkColumns[cat] != again.MarkColumns[cat] ||
				first.Confidence[cat] != again.Confidence[cat] {
				t.Fatalf("detection not deterministic for %s", cat)
			}
		}
	}
}
