// Package detect infers gradesheet structure from a grid of cell
// values: which column holds student identifiers, which holds names,
// and which hold each mark category.
package detect

import (
	"strings"

	"github.com/omahdaoui/gradelink-go/pkg/gradelink/arabic"
	"github.com/omahdaoui/gradelink-go/pkg/gradelink/models"
)

// Header vocabularies cover the Massar export layout and the common
// hand-made variants seen in teacher-maintained sheets. All matching
// happens on normalized text, so spelling variants (hamza forms, teh
// marbuta) collapse before comparison.

var idVocab = []string{
	"رقم",
	"الرقم",
	"ر ت",
	"الرقم الترتيبي",
	"رقم التلميذ",
	"رقم الطالب",
}

var nameVocab = []string{
	"اسم التلميذ",
	"الاسم الكامل",
	"الاسم والنسب",
	"الاسم",
	"اسم الطالب",
	"الاسم الشخصي والعائلي",
	"اسم",
}

var categoryVocab = map[models.MarkCategory][]string{
	models.Fard1: {"الفرض 1", "الفرض الاول", "الفرض الأول", "فرض 1", "الفرض رقم 1"},
	models.Fard2: {"الفرض 2", "الفرض الثاني", "فرض 2", "الفرض رقم 2"},
	models.Fard3: {"الفرض 3", "الفرض الثالث", "فرض 3", "الفرض رقم 3"},
	models.Fard4: {"الفرض 4", "الفرض الرابع", "فرض 4", "الفرض رقم 4"},
	models.Activities: {
		"الانشطة", "الأنشطة", "انشطة", "النشاط",
		"الانشطة المندمجة", "المراقبة المستمرة",
	},
}

// categoryKeywords are the core tokens whose containment scores a
// partial header match.
var categoryKeywords = map[models.MarkCategory][]string{
	models.Fard1:      {"فرض", "1"},
	models.Fard2:      {"فرض", "2"},
	models.Fard3:      {"فرض", "3"},
	models.Fard4:      {"فرض", "4"},
	models.Activities: {"نشاط"},
}

// activityAliases also score a partial activities match; normalization
// maps the teh marbuta spellings onto these.
var activityAliases = []string{"انشطه", "مرافبه"}

// genericMarkVocab marks header text as test-like without binding it to
// a category ("additional" columns).
var genericMarkVocab = []string{"فرض", "اختبار", "امتحان", "نقطة", "الدورة"}

func normalizeAll(terms []string) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = arabic.Normalize(t)
	}
	return out
}

var (
	idVocabNorm          = normalizeAll(idVocab)
	nameVocabNorm        = normalizeAll(nameVocab)
	genericMarkVocabNorm = normalizeAll(genericMarkVocab)
	categoryVocabNorm    = func() map[models.MarkCategory][]string {
		out := make(map[models.MarkCategory][]string, len(categoryVocab))
		for cat, terms := range categoryVocab {
			out[cat] = normalizeAll(terms)
		}
		return out
	}()
	categoryKeywordsNorm = func() map[models.MarkCategory][]string {
		out := make(map[models.MarkCategory][]string, len(categoryKeywords))
		for cat, terms := range categoryKeywords {
			out[cat] = normalizeAll(terms)
		}
		return out
	}()
	activityAliasesNorm = normalizeAll(activityAliases)
)

// matchesExact reports whether the normalized header equals any entry.
func matchesExact(norm string, vocabNorm []string) bool {
	for _, v := range vocabNorm {
		if norm == v {
			return true
		}
	}
	return false
}

// matchesSubstring reports whether the normalized header contains any
// entry.
func matchesSubstring(norm string, vocabNorm []string) bool {
	for _, v := range vocabNorm {
		if v != "" && strings.Contains(norm, v) {
			return true
		}
	}
	return false
}

// containsAll reports whether norm contains every keyword.
func containsAll(norm string, keywords []string) bool {
	for _, k := range keywords {
		if !strings.Contains(norm, k) {
			return false
		}
	}
	return len(keywords) > 0
}

// scoreCategoryHeader scores a header cell against one category's
// vocabulary: 0.9 for the exact canonical phrase, 0.7 for a partial
// match containing the core keywords, 0 otherwise.
func scoreCategoryHeader(norm string, cat models.MarkCategory) float64 {
	if matchesExact(norm, categoryVocabNorm[cat]) {
		return 0.9
	}
	if containsAll(norm, categoryKeywordsNorm[cat]) {
		return 0.7
	}
	if cat == models.Activities {
		for _, alias := range activityAliasesNorm {
			if strings.Contains(norm, alias) {
				return 0.7
			}
		}
	}
	return 0
}

// isVocabCell reports whether a normalized cell matches any known
// header vocabulary.
func isVocabCell(norm string) bool {
	if norm == "" {
		return false
	}
	if matchesExact(norm, idVocabNorm) || matchesExact(norm, nameVocabNorm) {
		return true
	}
	if matchesSubstring(norm, nameVocabNorm) {
		return true
	}
	for cat := range categoryVocabNorm {
		if scoreCategoryHeader(norm, cat) > 0 {
			return true
		}
	}
	return matchesSubstring(norm, genericMarkVocabNorm)
}
