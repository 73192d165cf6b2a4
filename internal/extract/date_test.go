package extract

import "testing"

func TestDateExtract_EarliestWins(t *testing.T) {
	e := NewDateExtractor()

	got := e.Extract("Versand am 27.11.2025\nRechnungsdatum 30.11.2025", 0)
	if got != "2025-11-27" {
		t.Errorf("expected earliest date 2025-11-27, got %q", got)
	}
}

func TestDateExtract_TextualGerman(t *testing.T) {
	e := NewDateExtractor()

	tests := []struct {
		name string
		text string
		year int
		want string
	}{
		{"full german month", "Versand 02.Dezember 2025", 0, "2025-12-02"},
		{"abbreviated month with invoice year", "Versand 27.Nov", 2025, "2025-11-27"},
		{"prefix slip", "Versand 14 Jaur 2025", 0, "2025-01-14"},
		{"maerz spelling", "Versand 1 Mrz 25", 2025, "2025-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Extract(tt.text, tt.year); got != tt.want {
				t.Errorf("Extract(%q, %d) = %q, want %q", tt.text, tt.year, got, tt.want)
			}
		})
	}
}

func TestNormalizeMonth(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"Dezember", "December", true},
		{"nov", "November", true},
		{"n0vember", "November", true}, // OCR zero for o
		{"dezemeber", "December", true},
		{"jaui", "January", true},
		{"xyz", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := normalizeMonth(tt.raw)
			if got != tt.want || ok != tt.ok {
				t.Errorf("normalizeMonth(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestDateExtract_NumericFormats(t *testing.T) {
	e := NewDateExtractor()

	tests := []struct {
		name string
		text string
		year int
		want string
	}{
		{"dotted day first", "27.11.2025", 0, "2025-11-27"},
		{"slash day first", "27/11/25", 2025, "2025-11-27"},
		{"iso year first", "2025-11-27", 0, "2025-11-27"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Extract(tt.text, tt.year); got != tt.want {
				t.Errorf("Extract(%q, %d) = %q, want %q", tt.text, tt.year, got, tt.want)
			}
		})
	}
}

func TestDateExtract_TwoDigitYear(t *testing.T) {
	e := NewDateExtractor()

	t.Run("expands with invoice year century", func(t *testing.T) {
		if got := e.Extract("05.03.25", 2025); got != "2025-03-05" {
			t.Errorf("expected 2025-03-05, got %q", got)
		}
	})

	t.Run("assumes 2000s without invoice year", func(t *testing.T) {
		if got := e.Extract("05.03.25", 0); got != "2025-03-05" {
			t.Errorf("expected 2025-03-05, got %q", got)
		}
	})
}

func TestDateExtract_MissingYearUsesInvoiceYear(t *testing.T) {
	e := NewDateExtractor()

	t.Run("no year and no invoice year yields nothing", func(t *testing.T) {
		if got := e.Extract("Versand 27.Nov", 0); got != "" {
			t.Errorf("expected no date without any year, got %q", got)
		}
	})
}

func TestDateExtract_InvalidCandidatesDiscarded(t *testing.T) {
	e := NewDateExtractor()

	t.Run("month out of range", func(t *testing.T) {
		if got := e.Extract("11/27/2025", 0); got != "" {
			t.Errorf("month-first reading must be discarded, got %q", got)
		}
	})

	t.Run("no dates at all", func(t *testing.T) {
		if got := e.Extract("Gewicht: 9,5", 0); got != "" {
			t.Errorf("expected no date, got %q", got)
		}
	})
}
