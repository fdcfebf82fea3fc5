// Package extract abstracts PDF text extraction behind small interfaces so
// the indexing pipeline can be exercised without real PDF files.
package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Document is an open PDF exposing its text page by page.
type Document interface {
	// PageCount returns the number of pages.
	PageCount() int

	// PageText returns the text of the given 1-based page. Rows are
	// separated by newlines.
	PageText(page int) (string, error)

	// Close releases the underlying file.
	Close() error
}

// Opener opens documents by path.
type Opener interface {
	Open(path string) (Document, error)
}

// PDFOpener opens real PDF files.
type PDFOpener struct{}

// NewPDFOpener returns an Opener backed by the pdf library.
func NewPDFOpener() *PDFOpener {
	return &PDFOpener{}
}

// Open opens the PDF at path.
// The pdf library panics on some malformed files; panics are converted to
// errors so a bad document cannot take down a worker.
func (o *PDFOpener) Open(path string) (doc Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("malformed pdf %s: %v", path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf %s: %w", path, err)
	}

	return &pdfDocument{file: f, reader: reader}, nil
}

// pdfDocument adapts a pdf.Reader to the Document interface.
type pdfDocument struct {
	file   *os.File
	reader *pdf.Reader
}

func (d *pdfDocument) PageCount() int {
	return d.reader.NumPage()
}

func (d *pdfDocument) PageText(page int) (text string, err error) {
	if page < 1 || page > d.reader.NumPage() {
		return "", fmt.Errorf("page %d out of range [1,%d]", page, d.reader.NumPage())
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("malformed page %d: %v", page, r)
		}
	}()

	p := d.reader.Page(page)
	if p.V.IsNull() {
		return "", fmt.Errorf("page %d is missing", page)
	}

	rows, err := p.GetTextByRow()
	if err != nil {
		return "", fmt.Errorf("failed to read page %d: %w", page, err)
	}

	var sb strings.Builder
	for i, row := range rows {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for _, t := range row.Content {
			sb.WriteString(t.S)
		}
	}

	return sb.String(), nil
}

func (d *pdfDocument) Close() error {
	return d.file.Close()
}
