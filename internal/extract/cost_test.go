package extract

import "testing"

func TestCostExtract_RightmostColumnWins(t *testing.T) {
	e := NewCostExtractor()

	items := e.Extract("Transport 1.234,56 617,28\n")

	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].ExtractedCategory != "Freight" {
		t.Errorf("category = %q, want Freight", items[0].ExtractedCategory)
	}
	if items[0].TotalCost == nil || *items[0].TotalCost != 617.28 {
		t.Errorf("total cost = %v, want 617.28", items[0].TotalCost)
	}
	if items[0].Mention != "Transport 1.234,56 617,28" {
		t.Errorf("mention = %q", items[0].Mention)
	}
}

func TestCostExtract_InvoiceCurrencyApplied(t *testing.T) {
	e := NewCostExtractor()

	block := "Transport 1.234,56 617,28\n" +
		"Benzinzuschlag 25,00 12,50\n" +
		"Gesamtkosten CHF 629,78\n"

	items := e.Extract(block)

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2 (the total line is a summary, not an item)", len(items))
	}
	for _, it := range items {
		if it.Currency == nil || *it.Currency != "CHF" {
			t.Errorf("item %q currency = %v, want CHF", it.Mention, it.Currency)
		}
	}
	if items[1].ExtractedCategory != "Fuel" {
		t.Errorf("category = %q, want Fuel", items[1].ExtractedCategory)
	}
}

func TestCostExtract_DuplicateRowsCollapse(t *testing.T) {
	e := NewCostExtractor()

	items := e.Extract("Benzinzuschlag 25,00 12,50\nBenzinzuschlag 25,00 12,50\n")

	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
}

func TestCostExtract_CurrencyDistinguishesRows(t *testing.T) {
	e := NewCostExtractor()

	items := e.Extract("Zoll CHF 10,00 10,00\nZoll EUR 10,00 10,00\n")

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if *items[0].Currency != "CHF" || *items[1].Currency != "EUR" {
		t.Errorf("currencies = %q/%q, want CHF/EUR", *items[0].Currency, *items[1].Currency)
	}
	for _, it := range items {
		if it.ExtractedCategory != "Customs" {
			t.Errorf("category = %q, want Customs", it.ExtractedCategory)
		}
	}
}

func TestCostExtract_SummaryLinesSkipped(t *testing.T) {
	e := NewCostExtractor()

	block := "Anzahl WW Express Saver Package 2,00\n" +
		"Gesamtbetrag 629,78\n" +
		"Transport 100,00 50,00\n"

	items := e.Extract(block)

	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].ExtractedCategory != "Freight" {
		t.Errorf("category = %q, want Freight", items[0].ExtractedCategory)
	}
}

func TestCostExtract_UnknownDescriptionKeptRaw(t *testing.T) {
	e := NewCostExtractor()

	items := e.Extract("Spezialposition 42,00\n")

	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].ExtractedCategory != "Spezialposition" {
		t.Errorf("category = %q, want the raw description", items[0].ExtractedCategory)
	}
	if items[0].TotalCost == nil || *items[0].TotalCost != 42.0 {
		t.Errorf("total cost = %v, want 42", items[0].TotalCost)
	}
	if items[0].Currency != nil {
		t.Errorf("currency = %v, want nil without any currency mention", *items[0].Currency)
	}
}
