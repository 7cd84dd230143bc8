package match

import (
	"context"
	"sort"
	"strings"

	"github.com/omahdaoui/gradelink-go/pkg/gradelink/arabic"
	"github.com/omahdaoui/gradelink-go/pkg/gradelink/models"
)

// Params holds the matcher's thresholds.
type Params struct {
	// FuzzyAccept is the similarity a row must exceed in the fuzzy tier.
	FuzzyAccept float64 `yaml:"fuzzy_accept"`
	// ContextBonusMax is the largest positional bonus applied when
	// resolving an ordered batch.
	ContextBonusMax float64 `yaml:"context_bonus_max"`
	// ContextFloor gates the positional bonus: rows scoring below it get
	// no bonus, so the bonus alone can never promote them.
	ContextFloor float64 `yaml:"context_floor"`
	// BatchRecordMin and BatchRowMin decide when batch resolution builds
	// the first-token index instead of scanning linearly.
	BatchRecordMin int `yaml:"batch_record_min"`
	BatchRowMin    int `yaml:"batch_row_min"`
	// CandidateCap bounds the pre-filtered fallback candidate set used
	// when no first-token bucket matches.
	CandidateCap int `yaml:"candidate_cap"`
}

// DefaultParams returns the tuned default thresholds.
func DefaultParams() Params {
	return Params{
		FuzzyAccept:     0.8,
		ContextBonusMax: 0.1,
		ContextFloor:    0.3,
		BatchRecordMin:  50,
		BatchRowMin:     100,
		CandidateCap:    10,
	}
}

// Matcher resolves a target name to a grid row using tiered search:
// exact, then partial (first/last token), then fuzzy scoring. Within a
// tier the first row in row order wins.
type Matcher struct {
	scorer *Scorer
	params Params
}

// NewMatcher returns a Matcher using scorer and p.
func NewMatcher(scorer *Scorer, p Params) *Matcher {
	return &Matcher{scorer: scorer, params: p}
}

// rowEntry is one name-column cell prepared for matching. pos is the
// entry's relative position among the data rows, used by the batch
// context bonus.
type rowEntry struct {
	row    int
	norm   string
	tokens []string
	pos    float64
}

func buildEntries(grid models.Grid, nameCol, startRow int) []rowEntry {
	entries := make([]rowEntry, 0, len(grid))
	for row := startRow; row < len(grid); row++ {
		norm := arabic.Normalize(grid.Cell(row, nameCol))
		if norm == "" {
			continue
		}
		entries = append(entries, rowEntry{
			row:    row,
			norm:   norm,
			tokens: strings.Fields(norm),
		})
	}
	for i := range entries {
		entries[i].pos = relativePosition(i, len(entries))
	}
	return entries
}

// FindRow resolves targetName within grid's name column, scanning rows
// [startRow, len(grid)). A miss is a normal outcome, not an error.
func (m *Matcher) FindRow(targetName string, grid models.Grid, nameCol, startRow int) models.MatchResult {
	entries := buildEntries(grid, nameCol, startRow)
	return m.resolve(targetName, entries, -1)
}

// ResolveBatch resolves an ordered batch of records, applying the
// positional bonus and, for large inputs, the first-token bucket index.
// It checks ctx between records and returns the results produced so far
// alongside ctx's error when cancelled.
func (m *Matcher) ResolveBatch(ctx context.Context, records []models.ExtractedRecord, grid models.Grid, nameCol, startRow int) ([]models.MatchResult, error) {
	entries := buildEntries(grid, nameCol, startRow)

	var idx *tokenIndex
	if len(records) >= m.params.BatchRecordMin || len(entries) >= m.params.BatchRowMin {
		idx = buildTokenIndex(entries)
	}

	results := make([]models.MatchResult, 0, len(records))
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		relPos := relativePosition(i, len(records))
		if idx != nil {
			results = append(results, m.resolveIndexed(rec.Name, entries, idx, relPos))
		} else {
			results = append(results, m.resolve(rec.Name, entries, relPos))
		}
	}
	return results, nil
}

// resolve runs the three tiers over entries in row order. relPos is the
// record's relative batch position, or negative for single lookups.
func (m *Matcher) resolve(targetName string, entries []rowEntry, relPos float64) models.MatchResult {
	norm := arabic.Normalize(targetName)
	if norm == "" {
		return notFound()
	}
	tokens := strings.Fields(norm)

	// Exact tier.
	for _, e := range entries {
		if e.norm == norm {
			return models.MatchResult{Row: e.row, Confidence: 1.0, Found: true}
		}
	}

	// Partial tier: matching first tokens, or matching last tokens when
	// both names carry at least two.
	if res, ok := m.partialTier(tokens, entries); ok {
		return res
	}

	return m.fuzzyTier(norm, entries, relPos)
}

// resolveIndexed narrows each tier through the index, preserving the
// first-row-wins tie-break of the linear scan.
func (m *Matcher) resolveIndexed(targetName string, entries []rowEntry, idx *tokenIndex, relPos float64) models.MatchResult {
	norm := arabic.Normalize(targetName)
	if norm == "" {
		return notFound()
	}
	tokens := strings.Fields(norm)

	if rows := idx.exact[norm]; len(rows) > 0 {
		return models.MatchResult{Row: rows[0], Confidence: 1.0, Found: true}
	}

	// Partial tier over the union of the first-token and last-token
	// buckets, earliest row first.
	bucket := idx.byFirst[tokens[0]]
	if res, ok := m.partialFromBuckets(tokens, bucket, idx); ok {
		return res
	}

	// Fuzzy tier over the first-token bucket; when the target's first
	// token has no bucket at all, fall back to a small pre-filtered
	// candidate set.
	if len(bucket) == 0 {
		bucket = prefilter(norm, entries, m.params.CandidateCap)
	}
	return m.fuzzyTier(norm, bucket, relPos)
}

func (m *Matcher) partialTier(tokens []string, entries []rowEntry) (models.MatchResult, bool) {
	for _, e := range entries {
		if e.tokens[0] == tokens[0] {
			return models.MatchResult{Row: e.row, Confidence: 0.9, Found: true}, true
		}
		if len(tokens) >= 2 && len(e.tokens) >= 2 &&
			e.tokens[len(e.tokens)-1] == tokens[len(tokens)-1] {
			return models.MatchResult{Row: e.row, Confidence: 0.9, Found: true}, true
		}
	}
	return models.MatchResult{}, false
}

func (m *Matcher) partialFromBuckets(tokens []string, firstBucket []rowEntry, idx *tokenIndex) (models.MatchResult, bool) {
	best := -1
	if len(firstBucket) > 0 {
		best = firstBucket[0].row
	}
	if len(tokens) >= 2 {
		// byLast only holds entries with two or more tokens, in row order.
		if lastBucket := idx.byLast[tokens[len(tokens)-1]]; len(lastBucket) > 0 {
			if r := lastBucket[0].row; best < 0 || r < best {
				best = r
			}
		}
	}
	if best < 0 {
		return models.MatchResult{}, false
	}
	return models.MatchResult{Row: best, Confidence: 0.9, Found: true}, true
}

// fuzzyTier returns the first entry in row order whose score clears
// FuzzyAccept, with the positional bonus applied for ordered batches.
func (m *Matcher) fuzzyTier(norm string, entries []rowEntry, relPos float64) models.MatchResult {
	for _, e := range entries {
		score := m.scorer.similarityNorm(norm, e.norm)
		if relPos >= 0 && score >= m.params.ContextFloor {
			score += m.params.ContextBonusMax * (1 - absFloat(e.pos-relPos))
			if score > 1 {
				score = 1
			}
		}
		if score > m.params.FuzzyAccept {
			return models.MatchResult{Row: e.row, Confidence: score, Found: true}
		}
	}
	return notFound()
}

func notFound() models.MatchResult {
	return models.MatchResult{Row: -1}
}

func relativePosition(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// tokenIndex partitions rows for O(bucket) lookups on large rosters.
// Buckets keep row order, so first-in-bucket equals first-in-sheet.
type tokenIndex struct {
	exact   map[string][]int
	byFirst map[string][]rowEntry
	byLast  map[string][]rowEntry
}

func buildTokenIndex(entries []rowEntry) *tokenIndex {
	idx := &tokenIndex{
		exact:   make(map[string][]int, len(entries)),
		byFirst: make(map[string][]rowEntry, len(entries)),
		byLast:  make(map[string][]rowEntry),
	}
	for _, e := range entries {
		idx.exact[e.norm] = append(idx.exact[e.norm], e.row)
		idx.byFirst[e.tokens[0]] = append(idx.byFirst[e.tokens[0]], e)
		if len(e.tokens) >= 2 {
			last := e.tokens[len(e.tokens)-1]
			idx.byLast[last] = append(idx.byLast[last], e)
		}
	}
	return idx
}

// prefilter ranks entries by a cheap length-and-containment heuristic
// and keeps the top limit, returned in row order.
func prefilter(norm string, entries []rowEntry, limit int) []rowEntry {
	type scored struct {
		entry rowEntry
		score float64
	}
	tl := runeLen(norm)
	cands := make([]scored, 0, len(entries))
	for _, e := range entries {
		el := runeLen(e.norm)
		mx := max(tl, el)
		if mx == 0 {
			continue
		}
		s := 1 - float64(abs(tl-el))/float64(mx)
		if strings.Contains(e.norm, norm) || strings.Contains(norm, e.norm) {
			s++
		}
		cands = append(cands, scored{entry: e, score: s})
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].score > cands[j].score
	})
	if len(cands) > limit {
		cands = cands[:limit]
	}
	out := make([]rowEntry, len(cands))
	for i, c := range cands {
		out[i] = c.entry
	}
	sort.Slice(out, func(i, j int) bool { return out[i].row < out[j].row })
	return out
}
