package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets into a landscape tabular PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body. Column widths
// follow the relative weights in widths when provided.
func (e *PDFExporter) Render(data Dataset, title string, widths ...float64) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	cols := columnWidths(len(data.Headers), widths)

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(248, 188, 26)
		for i, h := range data.Headers {
			pdf.CellFormat(cols[i], 8, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range data.Rows {
		if pdf.GetY()+7 > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		for i, h := range data.Headers {
			pdf.CellFormat(cols[i], 7, tr(truncate(row[h], cols[i])), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(n int, weights []float64) []float64 {
	const usable = 277.0
	cols := make([]float64, n)
	if len(weights) != n {
		for i := range cols {
			cols[i] = usable / float64(n)
		}
		return cols
	}
	var total float64
	for _, w := range weights {
		total += w
	}
	for i, w := range weights {
		cols[i] = usable * w / total
	}
	return cols
}

// truncate keeps a cell roughly inside its column at the 8pt body font.
func truncate(value string, width float64) string {
	max := int(width / 1.6)
	runes := []rune(value)
	if max < 4 || len(runes) <= max {
		return value
	}
	return string(runes[:max-3]) + "..."
}
