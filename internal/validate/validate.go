// Package validate normalizes extracted shipment records without destroying
// information: values that cannot be normalized are kept raw rather than
// nulled.
package validate

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/biter777/countries"

	"github.com/freightsift/freightsift/internal/invoice"
)

// Validator is the shape-normalization pass applied to every record before
// output. It is idempotent: validating a validated record changes nothing.
type Validator struct{}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateRecord returns a normalized copy of the record. Dates are coerced
// to ISO 8601, countries to ISO-2 when resolvable, strings trimmed. A field
// that fails normalization keeps its raw value (countries) or becomes nil
// (dates), but never aborts the rest of the record.
func (v *Validator) ValidateRecord(record invoice.ShipmentRecord) invoice.ShipmentRecord {
	cleaned := record

	cleaned.ShipmentDate = cleanDate(record.ShipmentDate)

	cleaned.OriginCountry = cleanCountry(record.OriginCountry)
	cleaned.DestinationCountry = cleanCountry(record.DestinationCountry)

	cleaned.OriginCity = cleanString(record.OriginCity)
	cleaned.DestinationCity = cleanString(record.DestinationCity)
	cleaned.ShipmentType = cleanString(record.ShipmentType)
	cleaned.CurrencyShipment = cleanString(record.CurrencyShipment)
	cleaned.OriginZipcode = cleanString(record.OriginZipcode)
	cleaned.DestinationZipcode = cleanString(record.DestinationZipcode)

	if record.CostItems != nil {
		items := make([]invoice.CostItem, len(record.CostItems))
		for i, item := range record.CostItems {
			items[i] = cleanCostItem(item)
		}
		cleaned.CostItems = items
	}

	return cleaned
}

// cleanString trims whitespace and nils out empty strings. "0" survives:
// never drop data that merely looks odd.
func cleanString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// cleanDate coerces to YYYY-MM-DD: strict parse first, then a flexible
// day-first parse. Unparseable dates become nil.
func cleanDate(value *string) *string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}

	if t, err := time.Parse("2006-01-02", *value); err == nil {
		iso := t.Format("2006-01-02")
		return &iso
	}

	t, err := dateparse.ParseAny(*value, dateparse.PreferMonthFirst(false))
	if err != nil {
		return nil
	}
	iso := t.Format("2006-01-02")
	return &iso
}

// cleanCountry coerces to ISO-2 when the value resolves to a known country.
// Unresolvable values are kept raw, uppercased: partial information beats
// none.
func cleanCountry(value *string) *string {
	if value == nil {
		return nil
	}

	code := strings.ToUpper(strings.TrimSpace(*value))
	if code == "" {
		return nil
	}

	if c := countries.ByName(code); c != countries.Unknown {
		alpha2 := c.Alpha2()
		return &alpha2
	}

	return &code
}

func cleanCostItem(item invoice.CostItem) invoice.CostItem {
	cleaned := item
	cleaned.ExtractedCategory = strings.TrimSpace(item.ExtractedCategory)
	cleaned.Mention = strings.TrimSpace(item.Mention)
	cleaned.Currency = cleanString(item.Currency)
	return cleaned
}
