package report

import (
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	pdfLineHeight = 5.0
	pdfFontSize   = 11
)

// RenderPDF writes the document as an A4 PDF. Blocks are never split
// across pages: if a block does not fit, a new page is started.
func RenderPDF(doc Document, filename string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Courier", "", pdfFontSize)

	// Courier has no glyphs beyond cp1252, translate German umlauts
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, marginBottom := pdf.GetMargins()
	maxY := pageHeight - marginBottom

	// Large width prevents line wrapping, alignment comes from spaces
	const cellWidth = 300

	pdf.MultiCell(cellWidth, pdfLineHeight, tr(doc.Header), "", "", false)

	for _, block := range doc.Blocks {
		blockHeight := float64(strings.Count(block, "\n")+1) * pdfLineHeight

		if pdf.GetY()+blockHeight > maxY {
			pdf.AddPage()
		}
		pdf.MultiCell(cellWidth, pdfLineHeight, tr(block), "", "", false)
	}

	footerHeight := float64(strings.Count(doc.Footer, "\n")+1) * pdfLineHeight
	if pdf.GetY()+footerHeight > maxY {
		pdf.AddPage()
	}
	pdf.MultiCell(cellWidth, pdfLineHeight, tr(doc.Footer), "", "", false)

	if err := pdf.OutputFileAndClose(filename); err != nil {
		return fmt.Errorf("write pdf %s: %w", filename, err)
	}
	return nil
}
