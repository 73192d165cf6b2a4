// Package pdf loads freight-invoice PDFs and exposes their text layer as
// ordered pages. It reads existing text layers only; scanned pages without a
// text layer come back empty.
package pdf

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	pdfcpu "github.com/pdfcpu/pdfcpu/pkg/api"
)

// Page is one page of an invoice document. Immutable once produced.
type Page struct {
	PageNum   int    // 1-based page number in file order
	Text      string // raw text layer, lines separated by \n
	IsScanned bool   // always false in current scope
}

// Loader extracts raw per-page text from a PDF file.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a Loader. A nil logger falls back to slog.Default.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load reads all pages of the PDF at path in file order. Unreadable or
// zero-page files are fatal; a page whose text layer cannot be decoded yields
// an empty page rather than failing the document.
func (l *Loader) Load(path string) ([]Page, error) {
	// Pre-flight with pdfcpu: catches truncated or non-PDF input before the
	// text-layer walk.
	pageCount, err := pdfcpu.PageCountFile(path)
	if err != nil {
		return nil, fmt.Errorf("unreadable PDF %s: %w", path, err)
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("PDF %s has no pages", path)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer f.Close()

	pages := make([]Page, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, Page{PageNum: i})
			continue
		}

		text, err := extractPageText(p)
		if err != nil {
			l.logger.Warn("page text extraction failed", "page", i, "error", err)
			text = ""
		}

		pages = append(pages, Page{PageNum: i, Text: text})
	}

	l.logger.Debug("loaded PDF", "path", path, "pages", len(pages))
	return pages, nil
}

// extractPageText reconstructs the page text top-to-bottom. Row grouping from
// the pdf library keeps invoice table cells on one line, which the downstream
// heuristics depend on.
func extractPageText(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		// Fall back to the flat text stream.
		text, perr := p.GetPlainText(nil)
		if perr != nil {
			return "", fmt.Errorf("get text by row: %w", err)
		}
		return normalizeNewlines(text), nil
	}

	// Rows are keyed by Y position, descending from top of page.
	sort.Slice(rows, func(i, j int) bool { return rows[i].Position > rows[j].Position })

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		var sb strings.Builder
		for _, t := range row.Content {
			sb.WriteString(t.S)
		}
		lines = append(lines, sb.String())
	}

	return normalizeNewlines(strings.Join(lines, "\n")), nil
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
