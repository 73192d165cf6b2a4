package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/freightsift/freightsift/internal/invoice"
)

var (
	// A cost row: free-text description followed by one or more
	// German-formatted decimal columns. The rightmost column is the net
	// figure (carrier invoices right-align the final column).
	reCostLine = regexp.MustCompile(`^([A-Za-zÄÖÜäöüß0-9\-.()/ ,]+?)\s+((?:\d{1,3}(?:\.\d{3})*,\d{1,2}\s+)*\d{1,3}(?:\.\d{3})*,\d{1,2})$`)

	// Invoice-level currency anchor: "Gesamtkosten CHF 317,40".
	reInvoiceCurrency = regexp.MustCompile(`(?i)Gesamtkosten\s+([A-Z]{3})`)

	reInlineCurrency = regexp.MustCompile(`(?i)\b(CHF|EUR|USD|GBP)\b`)
)

// costSkipKeywords mark invoice aggregates and package summaries, never line
// items.
var costSkipKeywords = []string{
	"gesamtkosten",
	"gesamtbetrag",
	"anzahl",
	"anzahl worldwide",
	"anzahl ww express",
	"package",
	"packages",
	"ww express saver package",
	"rabatt (gesamt)",
	"rabattzusammenfassung",
	"gesamtbetrag zusätzliche tarife",
}

// costCategories maps description keywords to canonical cost categories.
var costCategories = map[string]string{
	"transport":              "Freight",
	"dritte partei transport": "Freight",
	"benzinzuschlag":         "Fuel",
	"diesel":                 "Fuel",
	"maut":                   "Toll",
	"toll":                   "Toll",
	"zoll":                   "Customs",
	"customs":                "Customs",
	"verzollung":             "Customs",
	"handling":               "Handling",
	"lager":                  "Storage",
	"storage":                "Storage",
	"versicherung":           "Insurance",
	"insurance":              "Insurance",
	"rabatt":                 "Discount",
	"discount":               "Discount",
	"surcharge":              "Surcharge",
	"gebühr":                 "Surcharge",
	"surge fee":              "Surcharge",
}

const categoryRatioThreshold = 70

// CostExtractor parses the cost line items of a block.
type CostExtractor struct{}

// NewCostExtractor creates a CostExtractor.
func NewCostExtractor() *CostExtractor {
	return &CostExtractor{}
}

// costKey dedups exact (category, value, currency) triples within a block.
// Near-duplicates stay.
type costKey struct {
	category string
	value    float64
	hasValue bool
	currency string
}

// Extract returns the ordered cost items of the block. Summary/total lines
// are skipped, the rightmost numeric column is the row's net cost, inline
// currency tokens override the invoice-level currency, and descriptions are
// fuzzily mapped to canonical categories with the raw text kept when no
// category is close enough.
func (e *CostExtractor) Extract(blockText string) []invoice.CostItem {
	invoiceCurrency := detectInvoiceCurrency(blockText)

	items := make([]invoice.CostItem, 0)
	seen := make(map[costKey]struct{})

	for _, raw := range strings.Split(blockText, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		low := strings.ToLower(line)
		if containsAnyKeyword(low, costSkipKeywords) {
			continue
		}

		m := reCostLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		desc := strings.TrimSpace(m[1])
		numCols := strings.Fields(m[2])
		cost := parseGermanDecimal(numCols[len(numCols)-1])

		currency := invoiceCurrency
		if c := detectInlineCurrency(line); c != "" {
			currency = c
		}

		item := invoice.CostItem{
			ExtractedCategory: normalizeCategory(desc),
			TotalCost:         cost,
			Mention:           line,
		}
		if currency != "" {
			item.Currency = &currency
		}

		key := costKey{category: item.ExtractedCategory, currency: currency}
		if cost != nil {
			key.value = *cost
			key.hasValue = true
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		items = append(items, item)
	}

	return items
}

func detectInvoiceCurrency(text string) string {
	if m := reInvoiceCurrency.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}

func detectInlineCurrency(line string) string {
	if m := reInlineCurrency.FindStringSubmatch(line); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}

// normalizeCategory maps a row description to the closest canonical category,
// keeping the raw description when nothing scores high enough. Losing the
// description entirely would destroy information.
func normalizeCategory(desc string) string {
	d := strings.ToLower(strings.TrimSpace(desc))

	keys := make([]string, 0, len(costCategories))
	for key := range costCategories {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	best := ""
	bestScore := 0
	for _, key := range keys {
		if score := fuzzy.PartialRatio(key, d); score > bestScore {
			best = costCategories[key]
			bestScore = score
		}
	}

	if bestScore >= categoryRatioThreshold {
		return best
	}
	return desc
}

// parseGermanDecimal parses "1.234,56" → 1234.56, rejecting implausibly
// large figures.
func parseGermanDecimal(s string) *float64 {
	clean := strings.ReplaceAll(s, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || v >= maxPlausibleValue {
		return nil
	}
	return &v
}
