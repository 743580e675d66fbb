package parser

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor extracts per-page plain text from PDF bytes.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor { return &PDFExtractor{} }

// ExtractPages returns one text block per physical page, preserving page
// order. An unreadable document fails as a whole; a page that yields no
// text is kept as an empty entry so slide numbering stays aligned with
// the physical pages.
func (e *PDFExtractor) ExtractPages(data []byte) ([]string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, pageText)
	}
	return pages, nil
}
