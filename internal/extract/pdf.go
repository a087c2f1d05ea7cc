package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfTextLayer extracts the whole document's text layer in one call.
func (c *Cascade) pdfTextLayer(_ context.Context, data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}
	body, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf text layer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(body); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return buf.String(), nil
}

// pdfPageText walks the document page by page. This second text-layer pass
// recovers encodings the whole-document call trips over; pages that fail to
// decode are skipped so the rest still contribute.
func (c *Cascade) pdfPageText(_ context.Context, data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			c.logger.Debug("pdf page text failed", "page", i, "error", err)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}
	return b.String(), nil
}
