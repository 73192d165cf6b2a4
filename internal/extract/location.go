package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/biter777/countries"
)

// Locations holds the optional origin/destination address fields of one
// shipment.
type Locations struct {
	OriginCountry      *string
	OriginCity         *string
	OriginZipcode      *string
	DestinationCountry *string
	DestinationCity    *string
	DestinationZipcode *string
}

var (
	// Inline form: "Versender: OBERSCHLEISSHEIM 85764 DEUTSCHLAND".
	reAddrInline = regexp.MustCompile(`(?i)(versender|empf[aä]nger):\s*(.+)`)

	// First 3-7 digit run in the address residue. Can collide with a house
	// number preceding the postal code in some formats; kept as-is.
	reZip = regexp.MustCompile(`\b(\d{3,7})\b`)

	// Lines that terminate a multiline address block.
	reAddrEnd = regexp.MustCompile(`(?i)(Transport|Zuschlag|Package|Anzahl|Gebühr|Rabatt|Tarife|Gesamt|Service|Beschreibung|MWST|Basic)`)

	// Two-decimal cost pair marks a tariff table row.
	reCostRow = regexp.MustCompile(`\d+[,.]\d{2}\s+\d+[,.]\d{2}`)

	reCityNoise     = regexp.MustCompile(`[^A-Za-zÄÖÜäöü0-9\s\-]`)
	reMultiSpace    = regexp.MustCompile(`\s{2,}`)
	reTokenSplit    = regexp.MustCompile(`[, ]`)
	reAddrMultiline = map[string]*regexp.Regexp{
		"versender": regexp.MustCompile(`(?i)versender:\s*$`),
		"empfänger": regexp.MustCompile(`(?i)empf[aä]nger:\s*$`),
	}
)

// localCountries maps invoice-local country spellings to ISO-2. Checked
// before the general country lookup because the invoices favor German names.
var localCountries = map[string]string{
	"deutschland":        "DE",
	"germany":            "DE",
	"schweiz":            "CH",
	"switzerland":        "CH",
	"china":              "CN",
	"volksrepublik":      "CN",
	"hongkong":           "HK",
	"hong kong":          "HK",
	"österreich":         "AT",
	"austria":            "AT",
	"italien":            "IT",
	"italy":              "IT",
	"polen":              "PL",
	"poland":             "PL",
	"frankreich":         "FR",
	"france":             "FR",
	"spanien":            "ES",
	"spain":              "ES",
	"usa":                "US",
	"vereinigte staaten": "US",
}

// LocationExtractor pulls sender and receiver address fields out of a block.
type LocationExtractor struct{}

// NewLocationExtractor creates a LocationExtractor.
func NewLocationExtractor() *LocationExtractor {
	return &LocationExtractor{}
}

// Extract locates the sender and receiver address blocks (inline or
// multiline form) and parses zipcode, country and city out of each. All
// fields are independently optional.
func (e *LocationExtractor) Extract(blockText string) Locations {
	lines := nonBlankLines(blockText)

	originCity, originZip, originCountry := parseAddressBlock(collectAddressBlock(lines, "versender"))
	destCity, destZip, destCountry := parseAddressBlock(collectAddressBlock(lines, "empfänger"))

	return Locations{
		OriginCountry:      optional(originCountry),
		OriginCity:         optional(originCity),
		OriginZipcode:      optional(originZip),
		DestinationCountry: optional(destCountry),
		DestinationCity:    optional(destCity),
		DestinationZipcode: optional(destZip),
	}
}

// collectAddressBlock gathers the lines belonging to one role's address.
// The inline form contributes the rest of its line; the multiline form
// collects subsequent lines until a section keyword or a tariff table row.
func collectAddressBlock(lines []string, role string) []string {
	var (
		block      []string
		collecting bool
	)

	for _, line := range lines {
		if m := reAddrInline.FindStringSubmatch(line); m != nil {
			tag := strings.ToLower(m[1])
			if matchesRole(tag, role) {
				collecting = true
				block = append(block, strings.TrimSpace(m[2]))
			}
			continue
		}

		if reAddrMultiline[role].MatchString(line) {
			collecting = true
			continue
		}

		if collecting && reAddrEnd.MatchString(line) {
			break
		}
		if collecting && reCostRow.MatchString(line) {
			break
		}

		if collecting {
			block = append(block, line)
		}
	}

	return block
}

// matchesRole compares a captured role tag against the wanted role,
// tolerating the ae spelling of Empfänger.
func matchesRole(tag, role string) bool {
	if role == "empfänger" {
		return strings.Contains(tag, "empfänger") || strings.Contains(tag, "empfaenger")
	}
	return strings.Contains(tag, role)
}

// parseAddressBlock splits an address block into city, zipcode and country.
// The zipcode and country substrings are removed from the text; what remains
// is the city.
func parseAddressBlock(block []string) (city, zipcode, country string) {
	if len(block) == 0 {
		return "", "", ""
	}

	text := strings.Join(block, " ")

	if m := reZip.FindStringSubmatch(text); m != nil {
		zipcode = m[1]
	}

	country = extractCountry(text)

	cityLine := text
	if zipcode != "" {
		cityLine = strings.Replace(cityLine, zipcode, "", 1)
	}
	if country != "" {
		for _, key := range localCountryKeys() {
			cityLine = removeFold(cityLine, key)
		}
	}

	cityLine = reCityNoise.ReplaceAllString(cityLine, "")
	cityLine = strings.TrimSpace(reMultiSpace.ReplaceAllString(cityLine, " "))

	// Hong Kong invoices carry no separate city; the territory is both.
	if cityLine == "" && country == "HK" {
		cityLine = "HONG KONG"
	}

	return cityLine, zipcode, country
}

// extractCountry resolves a country mention to ISO-2: the local-language map
// first, then a general country-name lookup over individual tokens.
func extractCountry(text string) string {
	low := strings.ToLower(text)

	for _, key := range localCountryKeys() {
		if strings.Contains(low, key) {
			return localCountries[key]
		}
	}

	for _, token := range reTokenSplit.Split(low, -1) {
		if len(token) < 3 {
			continue
		}
		if c := countries.ByName(token); c != countries.Unknown {
			return c.Alpha2()
		}
	}

	return ""
}

// localCountryKeys returns the map keys in a stable order so country
// resolution never depends on map iteration.
func localCountryKeys() []string {
	keys := make([]string, 0, len(localCountries))
	for key := range localCountries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// removeFold removes every case-insensitive occurrence of sub from s.
func removeFold(s, sub string) string {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(sub))
	return re.ReplaceAllString(s, "")
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonBlankLines(text string) []string {
	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(ln); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines
}
