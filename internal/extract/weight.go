package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Weights holds the optional weight, volume and package-count fields of one
// shipment.
type Weights struct {
	GrossWeight      *float64
	ChargeableWeight *float64
	LoadingMeter     *float64
	CubicMeter       *float64
	PalletAmount     *int
}

var (
	reNumber        = regexp.MustCompile(`(\d+[.,]?\d*)`)
	rePackages      = regexp.MustCompile(`(?i)(pakete|pieces|stück|stk|packages|pkgs?|colis|pallets?)[:,]?\s*(\d+)`)
	reServiceKey    = regexp.MustCompile(`(?i)\b(WW|TB|Express|Worldwide|Package|PKG)\b`)
	reWeightTrack   = regexp.MustCompile(`(?i)\b1Z[0-9A-Z]{8,20}\b`)
	reWeightKeyword = regexp.MustCompile(`(?i)(gross|brutto|actual weight|gewicht|weight|chargeable|chargeable weight|rechnungsgewicht)`)
	reChargeable    = regexp.MustCompile(`(?i)(chargeable|berechnet|frachtpflichtig|rechnungsgewicht)`)
	reLoadingMeter  = regexp.MustCompile(`(?i)(lademeter|loading\s*meter|ld\.?m|lm)`)
	reCubic         = regexp.MustCompile(`(?i)(m3|cbm|cubic|kubik|volume)`)
	rePalletGross   = regexp.MustCompile(`\b(\d+)\s+(\d+[.,]\d+)\b`)
	rePkgCount      = regexp.MustCompile(`(?i)(\d+)\s*(?:PKG|Packages|PKGS)\b`)
)

// maxPlausibleValue rejects figures that can only be invoice aggregates or
// parse garbage, never a weight.
const maxPlausibleValue = 1e7

// WeightExtractor pulls gross/chargeable weight, loading meter, cubic meter
// and pallet count out of a block.
type WeightExtractor struct{}

// NewWeightExtractor creates a WeightExtractor.
func NewWeightExtractor() *WeightExtractor {
	return &WeightExtractor{}
}

// Extract parses the block line-wise. Cost table rows are dropped up front so
// tariff figures never get read as weights.
func (e *WeightExtractor) Extract(blockText string) Weights {
	var w Weights

	var lines []string
	for _, ln := range nonBlankLines(blockText) {
		if reCostRow.MatchString(ln) {
			continue
		}
		lines = append(lines, ln)
	}

	// 1) Tracking/service lines: "pallets gross" pair and "<n> PKG" count.
	for _, line := range lines {
		if !reWeightTrack.MatchString(line) && !reServiceKey.MatchString(line) {
			continue
		}

		if m := rePalletGross.FindStringSubmatch(line); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				w.PalletAmount = &n
			}
			if v, ok := parseWeightValue(m[2]); ok {
				w.GrossWeight = &v
			}
		}

		if m := rePkgCount.FindStringSubmatch(line); m != nil && w.PalletAmount == nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				w.PalletAmount = &n
			}
		}
	}

	// 2) Explicit package/pallet keywords override.
	for _, line := range lines {
		if m := rePackages.FindStringSubmatch(line); m != nil {
			if n, err := strconv.Atoi(m[2]); err == nil {
				w.PalletAmount = &n
			}
		}
	}

	// 3) Keyword-based weights: the last numeric token on the line is the
	// value. Chargeable-specific keywords route to chargeable weight; plain
	// weight lines only fill gross when still unset.
	for _, line := range lines {
		if reWeightKeyword.MatchString(line) {
			if v, ok := lastNumber(line); ok {
				if reChargeable.MatchString(line) {
					w.ChargeableWeight = &v
				} else if w.GrossWeight == nil {
					w.GrossWeight = &v
				}
			}
		}

		if reLoadingMeter.MatchString(line) {
			if v, ok := lastNumber(line); ok {
				w.LoadingMeter = &v
			}
		}

		if reCubic.MatchString(line) {
			if v, ok := lastNumber(line); ok {
				w.CubicMeter = &v
			}
		}
	}

	// 4) UPS "Gewicht/Container 6,0/5,5": the larger figure is chargeable,
	// the smaller is gross (container tare convention).
	for _, line := range lines {
		if !strings.Contains(strings.ToLower(line), "gewicht/container") {
			continue
		}

		var values []float64
		for _, m := range reNumber.FindAllString(line, -1) {
			if v, ok := parseWeightValue(m); ok {
				values = append(values, v)
			}
		}

		switch len(values) {
		case 2:
			hi, lo := values[0], values[1]
			if lo > hi {
				hi, lo = lo, hi
			}
			w.ChargeableWeight = &hi
			w.GrossWeight = &lo
		case 1:
			if w.GrossWeight == nil {
				w.GrossWeight = &values[0]
			}
		}
	}

	return w
}

// lastNumber returns the last numeric token on the line.
func lastNumber(line string) (float64, bool) {
	nums := reNumber.FindAllString(line, -1)
	if len(nums) == 0 {
		return 0, false
	}
	return parseWeightValue(nums[len(nums)-1])
}

// parseWeightValue parses a numeric token with comma as decimal separator and
// rejects implausibly large figures.
func parseWeightValue(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || v >= maxPlausibleValue {
		return 0, false
	}
	return v, true
}
