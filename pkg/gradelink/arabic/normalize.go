// Package arabic canonicalizes Arabic text into a comparable form:
// diacritics and invisible controls are stripped, letter variants and
// common OCR confusions are folded, and Arabic-Indic digits become
// ASCII. All functions are pure and idempotent.
package arabic

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes combining marks (harakat, shadda, sukun, hamza
// marks left over from decomposition) and invisible format controls
// (bidi marks, zero-width joiners). NFKD first so hamza-bearing letters
// and presentation forms decompose into base letter + mark.
var stripMarks = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	runes.Remove(runes.In(unicode.Cf)),
	norm.NFC,
)

// foldPair rewrites every occurrence of From to To. Pairs are applied
// in order; later pairs see the output of earlier ones.
type foldPair struct {
	From string
	To   string
}

// letterFolds collapses orthographic variants that handwriting, manual
// entry and OCR use interchangeably. The hamza forms are already folded
// by stripMarks; they are kept here so the table reads as the full rule
// set.
var letterFolds = []foldPair{
	{"أ", "ا"}, {"إ", "ا"}, {"آ", "ا"}, {"ٱ", "ا"},
	{"ؤ", "و"},
	{"ئ", "ي"},
	{"ة", "ه"},
	{"ى", "ي"},
	{"ـ", ""}, // tatweel
}

// ocrFolds collapses letter pairs that differ only by dots, the dominant
// confusion in OCR output from photographed sheets.
var ocrFolds = []foldPair{
	{"ز", "ر"},
	{"ذ", "د"},
	{"ض", "ص"},
	{"ظ", "ط"},
	{"غ", "ع"},
	{"ق", "ف"},
}

// digitFolds maps Arabic-Indic (U+0660..) and Extended Arabic-Indic
// (U+06F0..) digits to ASCII.
var digitFolds = map[rune]rune{
	'٠': '0', '١': '1', '٢': '2', '٣': '3', '٤': '4',
	'٥': '5', '٦': '6', '٧': '7', '٨': '8', '٩': '9',
	'۰': '0', '۱': '1', '۲': '2', '۳': '3', '۴': '4',
	'۵': '5', '۶': '6', '۷': '7', '۸': '8', '۹': '9',
}

// Normalize canonicalizes text for comparison. Empty or unparseable
// input yields "".
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	if out, _, err := transform.String(stripMarks, text); err == nil {
		text = out
	}
	text = applyFolds(text, letterFolds)
	text = applyFolds(text, ocrFolds)

	// Digits to ASCII, space variants to ASCII space, everything that is
	// neither letter nor digit (punctuation, brackets, pipes) to space.
	text = strings.Map(func(r rune) rune {
		if d, ok := digitFolds[r]; ok {
			return d
		}
		switch {
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return r
		}
		return ' '
	}, text)

	text = strings.Join(strings.Fields(text), " ")
	return strings.ToLower(text)
}

func applyFolds(s string, folds []foldPair) string {
	for _, p := range folds {
		s = strings.ReplaceAll(s, p.From, p.To)
	}
	return s
}

// ParseNumeral parses a cell or OCR value as a number, accepting
// Arabic-Indic digits and the Arabic decimal separator alongside ASCII
// forms.
func ParseNumeral(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.Map(func(r rune) rune {
		if d, ok := digitFolds[r]; ok {
			return d
		}
		switch r {
		case '٫', ',': // Arabic decimal separator, comma decimals
			return '.'
		}
		return r
	}, s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// IsArabicLetter reports whether r is in the Arabic letter ranges.
func IsArabicLetter(r rune) bool {
	return unicode.Is(unicode.Arabic, r) && unicode.IsLetter(r)
}

// LetterCount returns the number of Arabic letters in s.
func LetterCount(s string) int {
	n := 0
	for _, r := range s {
		if IsArabicLetter(r) {
			n++
		}
	}
	return n
}
