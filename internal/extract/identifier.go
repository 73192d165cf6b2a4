// Package extract pulls typed shipment fields out of free-text invoice
// blocks. Each extractor layers strict patterns, OCR-tolerant patterns, fuzzy
// matching and keyword fallbacks, in that priority order.
package extract

import (
	"regexp"
	"strings"
)

var (
	// Strict UPS form: 1Z prefix plus 8-20 alphanumerics. UPS defines 18
	// chars total but OCR may distort the length.
	reIDStrict = regexp.MustCompile(`\b1Z[0-9A-Z]{8,20}\b`)

	// OCR confusions on the prefix: IZ, lZ, 1z, iZ.
	reIDLoose = regexp.MustCompile(`\b[1Iil][Zz][0-9A-Z]{8,20}\b`)

	// Generic alphanumeric token, last-resort candidate source.
	reIDGeneric = regexp.MustCompile(`\b[A-Z0-9]{8,25}\b`)

	reLeadingZeros = regexp.MustCompile(`^0{3,}`)
	reNonAlnum     = regexp.MustCompile(`[^A-Za-z0-9]`)
	reLoosePrefix  = regexp.MustCompile(`^[Iil]`)
	reAllDigits    = regexp.MustCompile(`^\d+$`)
)

// idKeywords mark lines likely to carry a shipment reference of some kind.
var idKeywords = []string{
	"paketnummer", "frachtbrief", "tracking", "waybill", "awb",
	"referenz", "sendung", "shipment", "consignment",
}

// IdentifierExtractor finds the shipment tracking identifier in a block.
// A block without one is not a shipment.
type IdentifierExtractor struct{}

// NewIdentifierExtractor creates an IdentifierExtractor.
func NewIdentifierExtractor() *IdentifierExtractor {
	return &IdentifierExtractor{}
}

// Extract returns the cleaned identifier, or "" when no tier matches.
// Tiers, first hit wins:
//  1. strict carrier pattern anywhere in the block
//  2. OCR-tolerant pattern, line by line
//  3. generic token on keyword lines, plausibility-filtered
//  4. generic token anywhere in the block, plausibility-filtered
func (e *IdentifierExtractor) Extract(blockText string) string {
	lines := strings.Split(blockText, "\n")

	if m := reIDStrict.FindString(blockText); m != "" {
		return cleanIdentifier(m)
	}

	for _, line := range lines {
		if m := reIDLoose.FindString(fixOCRDigits(line)); m != "" {
			return cleanIdentifier(m)
		}
	}

	for _, line := range lines {
		if !containsAnyKeyword(line, idKeywords) {
			continue
		}
		for _, cand := range reIDGeneric.FindAllString(fixOCRDigits(line), -1) {
			if plausibleIdentifier(cand) {
				return cleanIdentifier(cand)
			}
		}
	}

	for _, cand := range reIDGeneric.FindAllString(fixOCRDigits(blockText), -1) {
		if plausibleIdentifier(cand) {
			return cleanIdentifier(cand)
		}
	}

	return ""
}

// fixOCRDigits normalizes the usual letter/digit confusions before pattern
// matching: O→0, I/l→1.
func fixOCRDigits(s string) string {
	r := strings.NewReplacer("O", "0", "o", "0", "I", "1", "l", "1")
	return r.Replace(s)
}

// plausibleIdentifier rejects the common false positives: short tokens,
// short pure-digit runs (postal codes, amounts), invoice IDs with leading
// zeros, and package-count tokens.
func plausibleIdentifier(s string) bool {
	if len(s) < 8 {
		return false
	}
	if reAllDigits.MatchString(s) && len(s) < 10 {
		return false
	}
	if reLeadingZeros.MatchString(s) {
		return false
	}
	if strings.Contains(s, "PKG") || strings.Contains(s, "PACKAGE") {
		return false
	}
	return true
}

// cleanIdentifier strips non-alphanumeric noise, repairs an OCR-mangled
// leading character of the 1Z prefix, and uppercases.
func cleanIdentifier(s string) string {
	cleaned := reNonAlnum.ReplaceAllString(s, "")
	cleaned = reLoosePrefix.ReplaceAllString(cleaned, "1")
	return strings.ToUpper(cleaned)
}

func containsAnyKeyword(line string, keywords []string) bool {
	low := strings.ToLower(line)
	for _, k := range keywords {
		if strings.Contains(low, k) {
			return true
		}
	}
	return false
}
