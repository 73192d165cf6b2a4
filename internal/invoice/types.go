// Package invoice defines the shipment record types produced by the pipeline.
package invoice

// ShipmentRecord is the flat per-shipment output unit. Optional fields are
// pointers so that a missing value serializes as JSON null rather than a
// zero value.
type ShipmentRecord struct {
	Identifier         string     `json:"identifier"`
	InvoicePage        int        `json:"invoice_page"`
	ShipmentDate       *string    `json:"shipment_date"`
	ShipmentType       *string    `json:"shipment_type"`
	CurrencyShipment   *string    `json:"currency_shipment"`
	OriginCountry      *string    `json:"origin_country"`
	OriginCity         *string    `json:"origin_city"`
	OriginZipcode      *string    `json:"origin_zipcode"`
	DestinationCountry *string    `json:"destination_country"`
	DestinationCity    *string    `json:"destination_city"`
	DestinationZipcode *string    `json:"destination_zipcode"`
	GrossWeight        *float64   `json:"gross_weight"`
	ChargeableWeight   *float64   `json:"chargeable_weight"`
	LoadingMeter       *float64   `json:"loading_meter"`
	CubicMeter         *float64   `json:"cubic_meter"`
	PalletAmount       *int       `json:"pallet_amount"`
	CostItems          []CostItem `json:"cost_items"`
}

// CostItem is one invoice cost row attributed to a shipment. Mention keeps
// the verbatim source line so every extracted figure stays auditable.
type CostItem struct {
	ExtractedCategory string   `json:"extracted_category"`
	TotalCost         *float64 `json:"total_cost_in_shipment_currency"`
	Currency          *string  `json:"currency"`
	Mention           string   `json:"mention"`
}

// String returns a pointer to s. Convenience for building records with
// optional fields.
func String(s string) *string { return &s }

// Float returns a pointer to f.
func Float(f float64) *float64 { return &f }

// Int returns a pointer to i.
func Int(i int) *int { return &i }
