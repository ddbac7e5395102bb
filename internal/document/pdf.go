package document

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page is the extracted text of one page.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Text is the plain text content of the page.
	Text string
}

// Extractor turns a stored document into per-page text.
type Extractor interface {
	Pages(path string) ([]Page, error)
}

// PDFExtractor extracts text with github.com/ledongthuc/pdf.
type PDFExtractor struct{}

// Pages returns the plain text of every page in the PDF at path, including
// empty ones. Malformed files can make the parser panic; that is reported
// as an error.
func (PDFExtractor) Pages(path string) (pages []Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("document: parse %s: malformed pdf: %v", path, r)
		}
	}()

	f, rdr, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("document: open %s: %w", path, err)
	}
	defer f.Close()

	n := rdr.NumPage()
	pages = make([]Page, 0, n)
	for i := 1; i <= n; i++ {
		p := rdr.Page(i)
		if p.V.IsNull() {
			pages = append(pages, Page{Number: i})
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("document: read page %d of %s: %w", i, path, err)
		}
		pages = append(pages, Page{Number: i, Text: strings.TrimSpace(text)})
	}
	return pages, nil
}
