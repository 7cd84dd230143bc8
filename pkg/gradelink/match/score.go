// Package match scores and resolves noisy Arabic names against
// gradesheet rows.
package match

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/omahdaoui/gradelink-go/pkg/gradelink/arabic"
)

// Weights blends the scorer's component signals. The blend is divided
// by the weight sum, so a retuned set need not add up to 1. Token
// overlap carries the largest weight so that shared whole tokens
// dominate the tie-break order.
type Weights struct {
	TokenOverlap float64 `yaml:"token_overlap"`
	Partial      float64 `yaml:"partial"`
	EditDistance float64 `yaml:"edit_distance"`
	Substring    float64 `yaml:"substring"`
	Phonetic     float64 `yaml:"phonetic"`
	Structural   float64 `yaml:"structural"`
}

// DefaultWeights returns the tuned defaults.
func DefaultWeights() Weights {
	return Weights{
		TokenOverlap: 0.40,
		Partial:      0.25,
		EditDistance: 0.15,
		Substring:    0.10,
		Phonetic:     0.05,
		Structural:   0.05,
	}
}

// lengthPenalty multiplies the blended score down when the two strings
// differ in length by more than half.
const lengthPenalty = 0.75

// compoundBonusStep and compoundBonusCap control the bonus added when
// both names share a recognized compound-name particle, which edit
// distance alone under-weights.
const (
	compoundBonusStep = 0.10
	compoundBonusCap  = 0.20
)

// compoundParticles are Arabic compound-name prefixes in normalized
// form (abd, abu, umm, ibn, bint, bin).
var compoundParticles = []string{"عبد", "ابو", "ام", "ابن", "بنت", "بن"}

// Scorer computes a 0..1 similarity between two names. Symmetric;
// identical inputs score 1.0, and an empty string against a non-empty
// one scores 0.
type Scorer struct {
	w Weights
}

// NewScorer returns a Scorer with the given weights.
func NewScorer(w Weights) *Scorer {
	return &Scorer{w: w}
}

// Similarity scores a against b. Both are normalized first, so raw OCR
// output may be passed directly.
func (s *Scorer) Similarity(a, b string) float64 {
	return s.similarityNorm(arabic.Normalize(a), arabic.Normalize(b))
}

// similarityNorm scores two already-normalized strings.
func (s *Scorer) similarityNorm(na, nb string) float64 {
	if na == nb {
		return 1.0
	}
	if na == "" || nb == "" {
		return 0
	}

	ta := strings.Fields(na)
	tb := strings.Fields(nb)

	sum := s.w.TokenOverlap + s.w.Partial + s.w.EditDistance +
		s.w.Substring + s.w.Phonetic + s.w.Structural
	if sum <= 0 {
		return 0
	}

	score := (s.w.TokenOverlap*tokenOverlap(ta, tb) +
		s.w.Partial*partialSimilarity(ta, tb) +
		s.w.EditDistance*editSimilarity(na, nb) +
		s.w.Substring*substringSimilarity(na, nb) +
		s.w.Phonetic*editSimilarity(arabic.Signature(na), arabic.Signature(nb)) +
		s.w.Structural*structuralSimilarity(ta, tb)) / sum

	la, lb := runeLen(na), runeLen(nb)
	if min(la, lb)*2 < max(la, lb) {
		score *= lengthPenalty
	}

	score += compoundBonus(ta, tb)
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

// tokenOverlap is the exact-token intersection size over the larger
// token set.
func tokenOverlap(ta, tb []string) float64 {
	seen := make(map[string]struct{}, len(ta))
	for _, t := range ta {
		seen[t] = struct{}{}
	}
	other := make(map[string]struct{}, len(tb))
	hits := 0
	for _, t := range tb {
		if _, dup := other[t]; dup {
			continue
		}
		other[t] = struct{}{}
		if _, ok := seen[t]; ok {
			hits++
		}
	}
	denom := len(seen)
	if len(other) > denom {
		denom = len(other)
	}
	if denom == 0 {
		return 0
	}
	return float64(hits) / float64(denom)
}

// partialSimilarity emphasizes first and last tokens: given and family
// name survive OCR better than middle particles.
func partialSimilarity(ta, tb []string) float64 {
	first := editSimilarity(ta[0], tb[0])
	if len(ta) < 2 || len(tb) < 2 {
		return first
	}
	last := editSimilarity(ta[len(ta)-1], tb[len(tb)-1])
	return 0.5*first + 0.5*last
}

// editSimilarity is (maxLen - levenshtein) / maxLen over runes.
func editSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := runeLen(a), runeLen(b)
	m := max(la, lb)
	if m == 0 {
		return 1
	}
	d := levenshtein.ComputeDistance(a, b)
	if d > m {
		d = m
	}
	return float64(m-d) / float64(m)
}

// substringSimilarity is shorter/longer when one string contains the
// other, else longest-common-substring length over the longer length.
func substringSimilarity(a, b string) float64 {
	la, lb := runeLen(a), runeLen(b)
	longer := max(la, lb)
	if longer == 0 {
		return 1
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return float64(min(la, lb)) / float64(longer)
	}
	return float64(longestCommonSubstring(a, b)) / float64(longer)
}

// structuralSimilarity compares token counts and aligned per-token
// lengths.
func structuralSimilarity(ta, tb []string) float64 {
	na, nb := len(ta), len(tb)
	mx := max(na, nb)
	if mx == 0 {
		return 1
	}
	countSim := 1 - float64(abs(na-nb))/float64(mx)

	n := min(na, nb)
	if n == 0 {
		return 0.5 * countSim
	}
	lenSim := 0.0
	for i := 0; i < n; i++ {
		la, lb := runeLen(ta[i]), runeLen(tb[i])
		m := max(la, lb)
		if m == 0 {
			lenSim++
			continue
		}
		lenSim += 1 - float64(abs(la-lb))/float64(m)
	}
	lenSim /= float64(n)

	return 0.5*countSim + 0.5*lenSim
}

// compoundBonus adds compoundBonusStep per particle family present in
// both names, capped at compoundBonusCap.
func compoundBonus(ta, tb []string) float64 {
	bonus := 0.0
	for _, p := range compoundParticles {
		if hasParticle(ta, p) && hasParticle(tb, p) {
			bonus += compoundBonusStep
			if bonus >= compoundBonusCap {
				return compoundBonusCap
			}
		}
	}
	return bonus
}

func hasParticle(tokens []string, p string) bool {
	for _, t := range tokens {
		if strings.HasPrefix(t, p) {
			return true
		}
	}
	return false
}

// longestCommonSubstring returns the length in runes of the longest
// common contiguous run.
func longestCommonSubstring(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	prev := make([]int, len(rb)+1)
	best := 0
	for i := 1; i <= len(ra); i++ {
		curr := make([]int, len(rb)+1)
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > best {
					best = curr[j]
				}
			}
		}
		prev = curr
	}
	return best
}

func runeLen(s string) int {
	return len([]rune(s))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
