package arabic

import "strings"

// phoneticFolds extends ocrFolds with pairs that are distinct on paper
// but close in sound, so a misread survives signature comparison.
var phoneticFolds = []foldPair{
	{"ث", "ت"},
	{"ش", "س"},
	{"خ", "ح"},
	{"ج", "ح"},
}

// Signature returns a phonetic folding of the normalized text. It
// re-applies the OCR-confusion folds, applies the wider phonetic table,
// and collapses consecutive duplicate letters so shadda expansion does
// not affect comparison. Idempotent, like Normalize.
func Signature(text string) string {
	text = Normalize(text)
	if text == "" {
		return ""
	}
	text = applyFolds(text, ocrFolds)
	text = applyFolds(text, phoneticFolds)

	var b strings.Builder
	b.Grow(len(text))
	var prev rune = -1
	for _, r := range text {
		if r == prev {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}
