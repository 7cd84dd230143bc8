package detect

import (
	"github.com/omahdaoui/gradelink-go/pkg/gradelink/arabic"
	"github.com/omahdaoui/gradelink-go/pkg/gradelink/models"
)

// Params holds structure detection thresholds.
type Params struct {
	// HeaderScanRows is how many leading rows are scanned for a header.
	HeaderScanRows int `yaml:"header_scan_rows"`
	// MinRows is the smallest grid that can be a gradesheet.
	MinRows int `yaml:"min_rows"`
	// SampleRows caps how many data rows the generic path samples.
	SampleRows int `yaml:"sample_rows"`
	// MinDensity rejects a grid whose used range is almost empty before
	// any column scoring runs.
	MinDensity float64 `yaml:"min_density"`
	// NameScoreMin and IDScoreMin are the generic-path acceptance bars
	// for the name and identifier columns.
	NameScoreMin float64 `yaml:"name_score_min"`
	IDScoreMin   float64 `yaml:"id_score_min"`
	// NumericRatioMin and InRangeRatioMin qualify a column as a mark
	// candidate: the share of numeric values and the share of values in
	// [0,20].
	NumericRatioMin float64 `yaml:"numeric_ratio_min"`
	InRangeRatioMin float64 `yaml:"in_range_ratio_min"`
	// ActivitiesGap and ActivitiesMean drive the reassignment of a
	// higher-scoring candidate column to the activities category.
	// Activities scores tend to run higher than timed tests, but these
	// cutoffs are tuned guesses, not validated constants; treat them as
	// adjustable defaults.
	ActivitiesGap  float64 `yaml:"activities_gap"`
	ActivitiesMean float64 `yaml:"activities_mean"`
}

// DefaultParams returns the default detection thresholds.
func DefaultParams() Params {
	return Params{
		HeaderScanRows:  10,
		MinRows:         5,
		SampleRows:      40,
		MinDensity:      0.05,
		NameScoreMin:    0.5,
		IDScoreMin:      0.4,
		NumericRatioMin: 0.7,
		InRangeRatioMin: 0.5,
		ActivitiesGap:   3.0,
		ActivitiesMean:  10.0,
	}
}

// positional confidences assigned to generic-path mark candidates,
// left to right.
var positionalConfidence = []float64{0.8, 0.7, 0.6, 0.5, 0.4}

const demotedConfidence = 0.3

// Detector locates the identifier, name and mark columns of a grid.
// Detection runs once per sheet load; a failed detection means the
// input does not look like a gradesheet and is not retried.
type Detector struct {
	params Params
}

// NewDetector returns a Detector using p.
func NewDetector(p Params) *Detector {
	return &Detector{params: p}
}

// Detect infers the worksheet structure of grid. It returns an error
// wrapping ErrNotAGradesheet when no usable name column can be
// established.
func (d *Detector) Detect(grid models.Grid) (*models.WorksheetStructure, error) {
	if grid.RowCount() < d.params.MinRows {
		return nil, &DetectionError{Reason: "fewer rows than the smallest possible gradesheet", Err: ErrNotAGradesheet}
	}
	if density(grid) < d.params.MinDensity {
		return nil, &DetectionError{Reason: "used range is almost empty", Err: ErrNotAGradesheet}
	}

	headerRow := d.findHeaderRow(grid)
	if headerRow >= 0 {
		st := d.detectFromHeader(grid, headerRow)
		if st.NameColumn != models.ColumnUnknown {
			return st, nil
		}
		// Labeled row without a recognizable name header: fall through to
		// the statistical path below it.
	}

	st, ok := d.detectGeneric(grid, headerRow)
	if !ok {
		return nil, &DetectionError{Reason: "no usable name column", Err: ErrNotAGradesheet}
	}
	return st, nil
}

func density(grid models.Grid) float64 {
	rows, cols := grid.RowCount(), grid.ColCount()
	if rows == 0 || cols == 0 {
		return 0
	}
	filled := 0
	for _, row := range grid {
		for _, cell := range row {
			if cell != "" {
				filled++
			}
		}
	}
	return float64(filled) / float64(rows*cols)
}

// findHeaderRow scans the leading rows for one that carries known
// header vocabulary and at least three non-empty cells. Returns -1 when
// none qualifies.
func (d *Detector) findHeaderRow(grid models.Grid) int {
	limit := d.params.HeaderScanRows
	if limit > grid.RowCount() {
		limit = grid.RowCount()
	}
	for row := 0; row < limit; row++ {
		nonEmpty := 0
		vocabHits := 0
		for col := 0; col < grid.ColCount(); col++ {
			cell := grid.Cell(row, col)
			if cell == "" {
				continue
			}
			nonEmpty++
			if isVocabCell(arabic.Normalize(cell)) {
				vocabHits++
			}
		}
		if nonEmpty >= 3 && vocabHits >= 2 {
			return row
		}
	}
	return -1
}

// detectFromHeader builds the structure from a labeled header row.
func (d *Detector) detectFromHeader(grid models.Grid, headerRow int) *models.WorksheetStructure {
	cols := grid.ColCount()
	headers := make([]string, cols)
	norms := make([]string, cols)
	for col := 0; col < cols; col++ {
		headers[col] = grid.Cell(headerRow, col)
		norms[col] = arabic.Normalize(headers[col])
	}

	st := &models.WorksheetStructure{
		Layout:      models.LayoutMassar,
		HeaderRow:   headerRow,
		Headers:     headers,
		IDColumn:    locateColumn(norms, idVocabNorm, nil),
		MarkColumns: make(map[models.MarkCategory]int, len(models.Categories)),
		Confidence:  make(map[models.MarkCategory]float64, len(models.Categories)),
	}
	st.NameColumn = locateColumn(norms, nameVocabNorm, map[int]struct{}{st.IDColumn: {}})

	assigned := map[int]struct{}{}
	if st.IDColumn != models.ColumnUnknown {
		assigned[st.IDColumn] = struct{}{}
	}
	if st.NameColumn != models.ColumnUnknown {
		assigned[st.NameColumn] = struct{}{}
	}

	for _, cat := range models.Categories {
		st.MarkColumns[cat] = models.ColumnUnknown
		st.Confidence[cat] = 0
		for col := 0; col < cols; col++ {
			if _, taken := assigned[col]; taken {
				continue
			}
			if score := scoreCategoryHeader(norms[col], cat); score > 0 {
				st.MarkColumns[cat] = col
				st.Confidence[cat] = score
				assigned[col] = struct{}{}
				break
			}
		}
	}

	// Test-like headers left over become additional candidate columns.
	for col := 0; col < cols; col++ {
		if _, taken := assigned[col]; taken {
			continue
		}
		if matchesSubstring(norms[col], genericMarkVocabNorm) {
			st.Extra = append(st.Extra, models.ExtraColumn{Index: col, Header: headers[col]})
		}
	}

	return st
}

// locateColumn finds the leftmost column matching vocab exactly, then
// the leftmost matching by substring. Columns in skip are ignored.
func locateColumn(norms []string, vocabNorm []string, skip map[int]struct{}) int {
	for col, norm := range norms {
		if _, s := skip[col]; s || norm == "" {
			continue
		}
		if matchesExact(norm, vocabNorm) {
			return col
		}
	}
	for col, norm := range norms {
		if _, s := skip[col]; s || norm == "" {
			continue
		}
		if matchesSubstring(norm, vocabNorm) {
			return col
		}
	}
	return models.ColumnUnknown
}

// columnStats accumulates the generic-path signals for one column.
type columnStats struct {
	sampled    int
	filled     int
	arabicText int
	richArabic int
	long       int
	numeric    int
	sequential int
	inRange    int
	sum        float64
	values     int
}

// detectGeneric infers structure without a header row, scoring each
// column on sampled data rows. headerRow is the labeled row to exclude,
// or -1.
func (d *Detector) detectGeneric(grid models.Grid, headerRow int) (*models.WorksheetStructure, bool) {
	cols := grid.ColCount()
	if cols == 0 {
		return nil, false
	}

	start := 0
	if headerRow >= 0 {
		start = headerRow + 1
	}

	stats := make([]columnStats, cols)
	prevNum := make([]float64, cols)
	hasPrev := make([]bool, cols)
	sampled := 0
	for row := start; row < grid.RowCount() && sampled < d.params.SampleRows; row++ {
		if headerRow < 0 && row < d.params.HeaderScanRows && looksLikeHeader(grid, row) {
			continue
		}
		sampled++
		for col := 0; col < cols; col++ {
			cell := grid.Cell(row, col)
			s := &stats[col]
			s.sampled++
			if cell == "" {
				hasPrev[col] = false
				continue
			}
			s.filled++
			if v, ok := arabic.ParseNumeral(cell); ok {
				s.numeric++
				s.values++
				s.sum += v
				if v >= 0 && v <= 20 {
					s.inRange++
				}
				if hasPrev[col] && v == prevNum[col]+1 {
					s.sequential++
				}
				prevNum[col] = v
				hasPrev[col] = true
				continue
			}
			hasPrev[col] = false
			letters := arabic.LetterCount(cell)
			if letters > 0 {
				s.arabicText++
			}
			if letters >= 3 {
				s.richArabic++
			}
			if len([]rune(cell)) > 3 {
				s.long++
			}
		}
	}
	if sampled == 0 {
		return nil, false
	}

	nameCol, nameScore := models.ColumnUnknown, 0.0
	for col := 0; col < cols; col++ {
		s := stats[col]
		score := float64(s.arabicText+2*s.richArabic+s.long) / float64(4*sampled)
		if score > nameScore {
			nameCol, nameScore = col, score
		}
	}
	if nameCol == models.ColumnUnknown || nameScore <= d.params.NameScoreMin {
		return nil, false
	}

	idCol, idScore := models.ColumnUnknown, 0.0
	for col := 0; col < cols; col++ {
		if col == nameCol {
			continue
		}
		s := stats[col]
		score := float64(s.numeric+2*s.sequential) / float64(3*sampled)
		if score > idScore {
			idCol, idScore = col, score
		}
	}
	if idScore <= d.params.IDScoreMin {
		idCol = models.ColumnUnknown
	}

	var candidates []int
	for col := 0; col < cols; col++ {
		if col == nameCol || col == idCol {
			continue
		}
		s := stats[col]
		if s.values == 0 {
			continue
		}
		if s.filled == 0 {
			continue
		}
		numericRatio := float64(s.numeric) / float64(s.filled)
		inRangeRatio := float64(s.inRange) / float64(s.values)
		if numericRatio >= d.params.NumericRatioMin && inRangeRatio >= d.params.InRangeRatioMin {
			candidates = append(candidates, col)
		}
	}

	st := &models.WorksheetStructure{
		Layout:      models.LayoutGeneric,
		HeaderRow:   headerRow,
		IDColumn:    idCol,
		NameColumn:  nameCol,
		MarkColumns: make(map[models.MarkCategory]int, len(models.Categories)),
		Confidence:  make(map[models.MarkCategory]float64, len(models.Categories)),
	}
	if headerRow >= 0 {
		headers := make([]string, cols)
		for col := 0; col < cols; col++ {
			headers[col] = grid.Cell(headerRow, col)
		}
		st.Headers = headers
	}

	d.assignCandidates(st, stats, candidates)
	return st, true
}

// assignCandidates maps candidate columns onto categories left to right
// with descending confidence, then re-ranks: a candidate whose mean is
// markedly higher than the rest likely holds the activities score.
func (d *Detector) assignCandidates(st *models.WorksheetStructure, stats []columnStats, candidates []int) {
	for _, cat := range models.Categories {
		st.MarkColumns[cat] = models.ColumnUnknown
		st.Confidence[cat] = 0
	}

	activitiesCol := d.findActivitiesColumn(stats, candidates)

	slots := []models.MarkCategory{models.Fard1, models.Fard2, models.Fard3, models.Fard4}
	if activitiesCol == models.ColumnUnknown {
		slots = append(slots, models.Activities)
	} else {
		st.MarkColumns[models.Activities] = activitiesCol
		st.Confidence[models.Activities] = 0.9
	}

	slot := 0
	for _, col := range candidates {
		if col == activitiesCol {
			continue
		}
		if slot >= len(slots) {
			st.Extra = append(st.Extra, models.ExtraColumn{Index: col, Header: st.Header(col)})
			continue
		}
		cat := slots[slot]
		st.MarkColumns[cat] = col
		if activitiesCol != models.ColumnUnknown {
			// Positions shifted by the reassignment; keep these guesses weak.
			st.Confidence[cat] = demotedConfidence
		} else if slot < len(positionalConfidence) {
			st.Confidence[cat] = positionalConfidence[slot]
		} else {
			st.Confidence[cat] = demotedConfidence
		}
		slot++
	}
}

// findActivitiesColumn returns the candidate whose mean value exceeds
// ActivitiesMean and sits more than ActivitiesGap above the mean of the
// other candidates, or ColumnUnknown.
func (d *Detector) findActivitiesColumn(stats []columnStats, candidates []int) int {
	if len(candidates) < 2 {
		return models.ColumnUnknown
	}
	best, bestMean := models.ColumnUnknown, 0.0
	for _, col := range candidates {
		if stats[col].values == 0 {
			continue
		}
		mean := stats[col].sum / float64(stats[col].values)
		if mean > bestMean {
			best, bestMean = col, mean
		}
	}
	if best == models.ColumnUnknown || bestMean <= d.params.ActivitiesMean {
		return models.ColumnUnknown
	}
	otherSum, otherN := 0.0, 0
	for _, col := range candidates {
		if col == best || stats[col].values == 0 {
			continue
		}
		otherSum += stats[col].sum / float64(stats[col].values)
		otherN++
	}
	if otherN == 0 {
		return models.ColumnUnknown
	}
	if bestMean-otherSum/float64(otherN) <= d.params.ActivitiesGap {
		return models.ColumnUnknown
	}
	return best
}

// looksLikeHeader is the generic path's header-like row exclusion: a
// row of short non-numeric labels.
func looksLikeHeader(grid models.Grid, row int) bool {
	nonEmptyCells, numeric := 0, 0
	for col := 0; col < grid.ColCount(); col++ {
		cell := grid.Cell(row, col)
		if cell == "" {
			continue
		}
		nonEmptyCells++
		if _, ok := arabic.ParseNumeral(cell); ok {
			numeric++
		}
	}
	return nonEmptyCells >= 3 && numeric == 0
}
