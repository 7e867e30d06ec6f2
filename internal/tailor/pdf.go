package tailor

import (
	"bytes"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

// InspectPDF checks that data is a PDF by content sniffing and returns its
// page count. The page count is 0 when the document cannot be parsed.
func InspectPDF(data []byte) (int, error) {
	if len(data) == 0 || !mimetype.Detect(data).Is("application/pdf") {
		return 0, ErrNotPDF
	}
	return pageCount(data), nil
}

func pageCount(data []byte) (pages int) {
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if recover() != nil {
			pages = 0
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0
	}
	return reader.NumPage()
}
