package arabic

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"plain name", "محمد العلوي", "محمد العلوي"},
		{"ocr confusions fold", "محمذ العلوى", "محمد العلوي"},
		{"diacritics stripped", "مُحَمَّد", "محمد"},
		{"hamza forms fold", "أحمد إبراهيم", "احمد ابراهيم"},
		{"teh marbuta folds", "فاطمة", "فاطمه"},
		{"tatweel stripped", "محـــمد", "محمد"},
		{"arabic digits", "١٢٣", "123"},
		{"extended arabic digits", "۴۵", "45"},
		{"punctuation to space", "محمد|العلوي", "محمد العلوي"},
		{"brackets stripped", "(محمد)", "محمد"},
		{"space variants collapse", "محمد  العلوي", "محمد العلوي"},
		{"latin lowercased", "Ahmed EL ALAOUI", "ahmed el alaoui"},
		{"zero width removed", "مح​مد", "محمد"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.expected {
				t.Errorf("Normalize(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"محمد العلوي",
		"مُحَمَّدٌ بْنُ عَبْدِ اللَّه",
		"أحمد (١٢) | فاطمة",
		"Mixed نص and ١٢٣ digits",
		"‏‎الاسم الكامل‏",
	}
	for _, s := range inputs {
		once := Normalize(s)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", s, once, twice)
		}
	}
}

func TestParseNumeral(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"12.5", 12.5, true},
		{" 8 ", 8, true},
		{"١٢٫٥", 12.5, true},
		{"١٥", 15, true},
		{"12,5", 12.5, true},
		{"", 0, false},
		{"غائب", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumeral(tt.input)
		if ok != tt.ok || (ok && got != tt.expected) {
			t.Errorf("ParseNumeral(%q) = (%v, %v), expected (%v, %v)",
				tt.input, got, ok, tt.expected, tt.ok)
		}
	}
}

func TestSignature(t *testing.T) {
	// Dot and sound confusions collapse to the same signature.
	pairs := [][2]string{
		{"شريف", "سريف"},
		{"ثامر", "تامر"},
		{"خالد", "حالد"},
	}
	for _, p := range pairs {
		if Signature(p[0]) != Signature(p[1]) {
			t.Errorf("Signature(%q) = %q, Signature(%q) = %q, expected equal",
				p[0], Signature(p[0]), p[1], Signature(p[1]))
		}
	}

	// Pin one collapsed form by codepoint so lookalike characters in
	// the inputs cannot slip through the pairwise checks above.
	if got := Signature("ثامر"); got != "تامر" {
		t.Errorf("Signature(ثامر) = %q, expected تامر", got)
	}

	if Signature("محمد") == Signature("فاطمة") {
		t.Error("distinct names should keep distinct signatures")
	}

	for _, s := range []string{"شريف", "محمد العلوي", ""} {
		if Signature(Signature(s)) != Signature(s) {
			t.Errorf("Signature not idempotent for %q", s)
		}
	}
}

func TestLetterCount(t *testing.T) {
	if got := LetterCount("محمد 12 ok"); got != 4 {
		t.Errorf("LetterCount = %d, expected 4", got)
	}
	if got := LetterCount("abc"); got != 0 {
		t.Errorf("LetterCount of Latin text = %d, expected 0", got)
	}
}
