package extract

import (
	"regexp"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// canonicalServices is the closed set of service labels extracted free text
// is normalized toward.
var canonicalServices = []string{
	"Express",
	"Express Saver",
	"Express Worldwide",
	"International Priority",
	"International Economy",
	"Standard",
	"Economy",
	"Premium",
	"Domestic",
	"Worldwide",
}

// Carrier service phrases across UPS ("WW Express Saver"), DHL ("EXPRESS
// WORLDWIDE", "ECONOMY SELECT") and FedEx ("International Priority").
var reService = regexp.MustCompile(`(?i)` +
	`(?:(WW|TB)\s+[A-Za-z ]{3,25})|` +
	`(Express(?:\s+Saver|\s+Worldwide|\s+Domestic)?)|` +
	`(International\s+(?:Priority|Economy))|` +
	`(Economy\s+Select)|` +
	`(Standard|Economy|Premium|Worldwide)`)

const (
	serviceRatioThreshold   = 70
	servicePartialThreshold = 85
)

// ServiceExtractor normalizes the shipment's service type to the canonical
// label set.
type ServiceExtractor struct{}

// NewServiceExtractor creates a ServiceExtractor.
func NewServiceExtractor() *ServiceExtractor {
	return &ServiceExtractor{}
}

// Extract returns the canonical service name, or "" when no tier matches.
// Tiers: combined carrier regex + fuzzy normalization, whole-block partial
// similarity, then first-word keyword fallback.
func (e *ServiceExtractor) Extract(blockText string) string {
	text := strings.TrimSpace(strings.ReplaceAll(blockText, "\n", " "))

	// 1) Strong regex detection, all captures concatenated then normalized.
	matches := reService.FindAllStringSubmatch(text, -1)
	if len(matches) > 0 {
		var parts []string
		for _, m := range matches {
			for _, group := range m[1:] {
				if group != "" {
					parts = append(parts, group)
				}
			}
		}
		if flat := strings.TrimSpace(strings.Join(parts, " ")); flat != "" {
			if norm := normalizeService(flat); norm != "" {
				return norm
			}
		}
	}

	// 2) Partial similarity against the whole block.
	low := strings.ToLower(text)
	for _, canon := range canonicalServices {
		if fuzzy.PartialRatio(strings.ToLower(canon), low) > servicePartialThreshold {
			return canon
		}
	}

	// 3) Keyword fallback: first word of a canonical label anywhere in the
	// block. Catches prose like "sent using International Priority Service".
	for _, canon := range canonicalServices {
		first := strings.ToLower(strings.Fields(canon)[0])
		if strings.Contains(low, first) {
			return canon
		}
	}

	return ""
}

// normalizeService picks the canonical label most similar to the raw capture,
// e.g. "WW Express Saver" → "Express Saver". Below the threshold nothing is
// returned.
func normalizeService(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))

	best := ""
	bestScore := 0
	for _, canon := range canonicalServices {
		if score := fuzzy.Ratio(raw, strings.ToLower(canon)); score > bestScore {
			best = canon
			bestScore = score
		}
	}

	if bestScore >= serviceRatioThreshold {
		return best
	}
	return ""
}
