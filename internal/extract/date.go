package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// monthEntry maps a German/English month token (possibly abbreviated) to its
// full English name. Order matters: prefix matching takes the first hit, so
// e.g. "jun" resolves before "jul" for the ambiguous "ju" prefix.
type monthEntry struct {
	key  string
	name string
}

var monthTable = []monthEntry{
	{"jan", "January"},
	{"januar", "January"},
	{"feb", "February"},
	{"februar", "February"},
	{"mär", "March"},
	{"maerz", "March"},
	{"märz", "March"},
	{"mar", "March"},
	{"mrz", "March"},
	{"apr", "April"},
	{"april", "April"},
	{"mai", "May"},
	{"jun", "June"},
	{"juni", "June"},
	{"jul", "July"},
	{"juli", "July"},
	{"aug", "August"},
	{"august", "August"},
	{"sep", "September"},
	{"sept", "September"},
	{"september", "September"},
	{"okt", "October"},
	{"oktober", "October"},
	{"oct", "October"},
	{"nov", "November"},
	{"november", "November"},
	{"dez", "December"},
	{"dezember", "December"},
	{"dec", "December"},
}

var (
	// Textual dates: "27.Nov", "02.Dezember 2025", "1 Mär 25".
	reDateTextual = regexp.MustCompile(`\b(\d{1,2})[.\-/]?\s*([A-Za-zÄÖÜäöü]{3,12})\.?,?\s*(\d{2,4})?\b`)

	// Numeric dates, day-first then year-first, separator-tolerant.
	reDateNumeric = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d{1,2})[./-](\d{1,2})[./-](\d{2,4})\b`),
		regexp.MustCompile(`\b(\d{4})[./-](\d{1,2})[./-](\d{1,2})\b`),
	}
)

// DateExtractor finds the shipment date in a block. Multiple dates usually
// appear (ship date, invoice date, due date); the chronologically earliest
// valid candidate wins since the ship date precedes the rest.
type DateExtractor struct{}

// NewDateExtractor creates a DateExtractor.
func NewDateExtractor() *DateExtractor {
	return &DateExtractor{}
}

// Extract returns the earliest valid date in ISO 8601 form, or "" when no
// candidate parses. invoiceYear, when non-zero, fills in missing years and
// supplies the century for two-digit years.
func (e *DateExtractor) Extract(blockText string, invoiceYear int) string {
	var candidates []time.Time

	// Textual pass: day + month token + optional year.
	for _, m := range reDateTextual.FindAllStringSubmatch(blockText, -1) {
		day, monthRaw, yearRaw := m[1], m[2], m[3]

		monthName, ok := normalizeMonth(monthRaw)
		if !ok {
			continue
		}

		year := invoiceYear
		if yearRaw != "" {
			year = fixYear(yearRaw, invoiceYear)
		}
		if year == 0 {
			continue
		}

		if t, ok := parseDayFirst(fmt.Sprintf("%s %s %d", day, monthName, year)); ok {
			candidates = append(candidates, t)
		}
	}

	// Numeric pass.
	for i, re := range reDateNumeric {
		for _, m := range re.FindAllStringSubmatch(blockText, -1) {
			var d, mo, y string
			if i == 0 {
				d, mo, y = m[1], m[2], m[3]
			} else {
				y, mo, d = m[1], m[2], m[3]
			}

			year := fixYear(y, invoiceYear)
			if year == 0 {
				continue
			}

			// The regex already fixed which field is the day, so the
			// candidate is rebuilt year-first to leave nothing ambiguous.
			if t, ok := parseDayFirst(fmt.Sprintf("%d-%s-%s", year, mo, d)); ok {
				candidates = append(candidates, t)
			}
		}
	}

	if len(candidates) == 0 {
		return ""
	}

	earliest := candidates[0]
	for _, c := range candidates[1:] {
		if c.Before(earliest) {
			earliest = c
		}
	}
	return earliest.Format("2006-01-02")
}

// normalizeMonth resolves an OCR-slipped month token (jaur, dezemeber, n0v)
// to a full English month name: exact match, then 3-letter prefix, then
// 2-letter prefix, with zero→o substitution applied first.
func normalizeMonth(raw string) (string, bool) {
	r := strings.ToLower(raw)
	r = strings.ReplaceAll(r, ".", "")
	r = strings.ReplaceAll(r, "0", "o")

	for _, entry := range monthTable {
		if r == entry.key {
			return entry.name, true
		}
	}

	for _, entry := range monthTable {
		if prefix(r, 3) == prefix(entry.key, 3) {
			return entry.name, true
		}
	}

	for _, entry := range monthTable {
		if prefix(r, 2) == prefix(entry.key, 2) {
			return entry.name, true
		}
	}

	return "", false
}

// fixYear expands two-digit years using the invoice year's century, or
// assumes 2000s without one. Returns 0 for unusable input.
func fixYear(raw string, invoiceYear int) int {
	y, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}

	if y >= 1900 {
		return y
	}

	if y >= 0 && y < 100 {
		if invoiceYear != 0 {
			century := invoiceYear / 100
			return century*100 + y
		}
		return 2000 + y
	}

	return 0
}

// parseDayFirst parses a candidate date string with day-first disambiguation.
// Unparseable candidates contribute nothing.
func parseDayFirst(s string) (time.Time, bool) {
	t, err := dateparse.ParseAny(s, dateparse.PreferMonthFirst(false))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) < n {
		return s
	}
	return string(r[:n])
}
