// Package pipeline wires the loader, segmenter, field extractors and
// validator into the per-document extraction run.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/freightsift/freightsift/internal/extract"
	"github.com/freightsift/freightsift/internal/invoice"
	"github.com/freightsift/freightsift/internal/pdf"
	"github.com/freightsift/freightsift/internal/schema"
	"github.com/freightsift/freightsift/internal/segment"
	"github.com/freightsift/freightsift/internal/validate"
)

// outputSuffix is appended to the input base name for the JSON output file.
const outputSuffix = "_extracted.json"

var reInvoiceYear = regexp.MustCompile(`\b(20\d{2})\b`)

// Pipeline runs the full extraction for one document at a time. It holds no
// per-document state, so one Pipeline can serve many documents.
type Pipeline struct {
	logger *slog.Logger

	loader      *pdf.Loader
	segmenter   *segment.Segmenter
	identifiers *extract.IdentifierExtractor
	dates       *extract.DateExtractor
	services    *extract.ServiceExtractor
	locations   *extract.LocationExtractor
	weights     *extract.WeightExtractor
	costs       *extract.CostExtractor
	validator   *validate.Validator
}

// Options configures a document run.
type Options struct {
	// Strict fails the document when the output does not satisfy the
	// embedded record schema. Off by default: a schema violation then only
	// logs a warning.
	Strict bool
}

// Result summarizes one processed document.
type Result struct {
	RunID   string `json:"run_id"`
	Input   string `json:"input"`
	Output  string `json:"output"`
	Pages   int    `json:"pages"`
	Blocks  int    `json:"blocks"`
	Records int    `json:"records"`
	Skipped int    `json:"skipped_blocks"`
}

// New creates a Pipeline. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		logger:      logger,
		loader:      pdf.NewLoader(logger),
		segmenter:   segment.NewSegmenter(logger),
		identifiers: extract.NewIdentifierExtractor(),
		dates:       extract.NewDateExtractor(),
		services:    extract.NewServiceExtractor(),
		locations:   extract.NewLocationExtractor(),
		weights:     extract.NewWeightExtractor(),
		costs:       extract.NewCostExtractor(),
		validator:   validate.NewValidator(),
	}
}

// ExtractFile runs the pipeline over the PDF at inputPath and writes the
// record array to outputDir as <base>_extracted.json.
func (p *Pipeline) ExtractFile(ctx context.Context, inputPath, outputDir string, opts Options) (*Result, error) {
	runID := uuid.New().String()
	log := p.logger.With("run_id", runID, "input", filepath.Base(inputPath))

	log.Info("starting extraction")

	pages, err := p.loader.Load(inputPath)
	if err != nil {
		return nil, err
	}

	records, blocks, skipped := p.process(pages, log)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode records: %w", err)
	}

	if err := schema.ValidateRecords(data); err != nil {
		if opts.Strict {
			return nil, fmt.Errorf("output failed schema validation: %w", err)
		}
		log.Warn("output does not satisfy record schema", "error", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	outPath := filepath.Join(outputDir, OutputName(inputPath))
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
	}

	log.Info("extraction complete", "records", len(records), "output", outPath)

	return &Result{
		RunID:   runID,
		Input:   inputPath,
		Output:  outPath,
		Pages:   len(pages),
		Blocks:  blocks,
		Records: len(records),
		Skipped: skipped,
	}, nil
}

// Process runs segmentation, extraction and validation over already-loaded
// pages. Exposed separately so synthetic page fixtures can exercise the full
// pipeline without a PDF file.
func (p *Pipeline) Process(pages []pdf.Page) []invoice.ShipmentRecord {
	records, _, _ := p.process(pages, p.logger)
	return records
}

func (p *Pipeline) process(pages []pdf.Page, log *slog.Logger) (records []invoice.ShipmentRecord, blocks, skipped int) {
	shipmentBlocks := p.segmenter.Segment(pages)
	invoiceYear := inferInvoiceYear(pages)

	records = make([]invoice.ShipmentRecord, 0, len(shipmentBlocks))

	for _, block := range shipmentBlocks {
		identifier := p.identifiers.Extract(block.Text)
		if identifier == "" {
			// Preamble or footer run, not a shipment.
			log.Debug("skipping block without identifier", "page", block.PageNum)
			skipped++
			continue
		}

		costItems := p.costs.Extract(block.Text)
		locs := p.locations.Extract(block.Text)
		wgts := p.weights.Extract(block.Text)

		record := invoice.ShipmentRecord{
			Identifier:         identifier,
			InvoicePage:        block.PageNum,
			ShipmentDate:       optionalString(p.dates.Extract(block.Text, invoiceYear)),
			ShipmentType:       optionalString(p.services.Extract(block.Text)),
			CurrencyShipment:   blockCurrency(costItems),
			OriginCountry:      locs.OriginCountry,
			OriginCity:         locs.OriginCity,
			OriginZipcode:      locs.OriginZipcode,
			DestinationCountry: locs.DestinationCountry,
			DestinationCity:    locs.DestinationCity,
			DestinationZipcode: locs.DestinationZipcode,
			GrossWeight:        wgts.GrossWeight,
			ChargeableWeight:   wgts.ChargeableWeight,
			LoadingMeter:       wgts.LoadingMeter,
			CubicMeter:         wgts.CubicMeter,
			PalletAmount:       wgts.PalletAmount,
			CostItems:          costItems,
		}

		validated, err := p.validateSafely(record)
		if err != nil {
			// The unvalidated record survives any normalization bug;
			// dropping it would lose extracted data.
			log.Warn("validation failed, keeping unvalidated record", "identifier", identifier, "error", err)
			validated = record
		}

		records = append(records, validated)
	}

	return records, len(shipmentBlocks), skipped
}

// validateSafely converts a panicking validator into a per-record error so
// one bad record never aborts the document.
func (p *Pipeline) validateSafely(record invoice.ShipmentRecord) (validated invoice.ShipmentRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("validator panic: %v", r)
		}
	}()
	return p.validator.ValidateRecord(record), nil
}

// inferInvoiceYear finds the first plausible year anywhere in the document,
// in page order. Zero means no year was found.
func inferInvoiceYear(pages []pdf.Page) int {
	for _, page := range pages {
		if m := reInvoiceYear.FindStringSubmatch(page.Text); m != nil {
			year, _ := strconv.Atoi(m[1])
			return year
		}
	}
	return 0
}

// blockCurrency picks the currency of the last cost item carrying one. The
// rightmost net column's currency is the shipment currency.
func blockCurrency(items []invoice.CostItem) *string {
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].Currency != nil {
			currency := *items[i].Currency
			return &currency
		}
	}
	return nil
}

// OutputName derives the output filename from the input's base name.
func OutputName(inputPath string) string {
	base := filepath.Base(inputPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + outputSuffix
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
