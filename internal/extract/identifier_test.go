package extract

import "testing"

func TestIdentifierExtract_StrictTier(t *testing.T) {
	e := NewIdentifierExtractor()

	got := e.Extract("Gewicht: 9,5\n1Z12345E0205271688 2 9,5\nTransport 100,00 90,00")
	if got != "1Z12345E0205271688" {
		t.Errorf("expected strict-tier match, got %q", got)
	}
}

func TestIdentifierExtract_OCRTolerantTier(t *testing.T) {
	e := NewIdentifierExtractor()

	t.Run("lowercase l for 1", func(t *testing.T) {
		got := e.Extract("lZ12345E0205271688")
		if got != "1Z12345E0205271688" {
			t.Errorf("expected OCR-repaired identifier, got %q", got)
		}
	})

	t.Run("uppercase I for 1", func(t *testing.T) {
		got := e.Extract("IZ12345E0205271688")
		if got != "1Z12345E0205271688" {
			t.Errorf("expected OCR-repaired identifier, got %q", got)
		}
	})
}

func TestIdentifierExtract_KeywordTier(t *testing.T) {
	e := NewIdentifierExtractor()

	got := e.Extract("Sendung von Basel\nFrachtbrief: AB12345678\nGewicht: 9,5")
	if got != "AB12345678" {
		t.Errorf("expected keyword-line candidate, got %q", got)
	}
}

func TestIdentifierExtract_GenericFallbackTier(t *testing.T) {
	e := NewIdentifierExtractor()

	got := e.Extract("Gewicht: 9,5\nXY98765432\nTransport 100,00 90,00")
	if got != "XY98765432" {
		t.Errorf("expected whole-block generic candidate, got %q", got)
	}
}

func TestIdentifierExtract_Plausibility(t *testing.T) {
	e := NewIdentifierExtractor()

	t.Run("leading zeros rejected", func(t *testing.T) {
		if got := e.Extract("Referenz: 00001618HS"); got != "" {
			t.Errorf("invoice-style ID with leading zeros must never be selected, got %q", got)
		}
	})

	t.Run("short token rejected", func(t *testing.T) {
		if got := e.Extract("Referenz: AB123"); got != "" {
			t.Errorf("short token must be rejected, got %q", got)
		}
	})

	t.Run("short digit run rejected", func(t *testing.T) {
		// Looks like a zipcode or an amount, not a tracking number.
		if got := e.Extract("Referenz: 85341267"); got != "" {
			t.Errorf("short digit run must be rejected, got %q", got)
		}
	})

	t.Run("package token rejected", func(t *testing.T) {
		if got := e.Extract("Referenz: WWPKG2847361"); got != "" {
			t.Errorf("PKG token must be rejected, got %q", got)
		}
	})
}

func TestIdentifierExtract_NoMatch(t *testing.T) {
	e := NewIdentifierExtractor()

	if got := e.Extract("Gewicht: 9,5\nTransport 100,00 90,00"); got != "" {
		t.Errorf("expected no identifier, got %q", got)
	}
}
