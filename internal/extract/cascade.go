// Package extract turns uploaded case-file bytes into best-effort text.
//
// PDF input runs through an ordered cascade: whole-document text layer,
// then page-by-page text layer, then rasterization plus OCR. Each stage is
// only tried when the previous one produced nothing. Word-processor and
// image inputs use a single format-specific strategy.
package extract

import (
	"context"
	"log/slog"
	"strings"

	"github.com/caseflow/casepipe/constants"
)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Antiword  string // binary name or absolute path; if empty -> "antiword"

	TesseractLang string // default "por"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // OCR page cap, default constants.MaxOCRPages
	MaxChars      int    // per-document ceiling, default constants.MaxCharsPerExtract
}

// Cascade runs extraction strategies in escalation order.
type Cascade struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewCascade(cfg Config, runner Runner, logger *slog.Logger) *Cascade {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Antiword == "" {
		cfg.Antiword = "antiword"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "por"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = constants.MaxOCRPages
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = constants.MaxCharsPerExtract
	}
	return &Cascade{cfg: cfg, runner: runner, logger: logger}
}

// Extract runs the strategy list for the resolved format. It never returns
// an error: callers get an Outcome whose Failed flag and Detail string
// describe what happened.
func (c *Cascade) Extract(ctx context.Context, data []byte, format constants.Format) Outcome {
	strategies := c.strategiesFor(format)
	if len(strategies) == 0 {
		c.logger.Debug("no extraction strategy for format", "format", format)
		return Outcome{Failed: true}
	}
	return c.run(ctx, strategies, data)
}

func (c *Cascade) strategiesFor(format constants.Format) []strategy {
	switch format {
	case constants.FormatPDF:
		return []strategy{
			{name: "pdf-text", fn: c.pdfTextLayer},
			{name: "pdf-page-text", fn: c.pdfPageText},
			{name: "pdf-ocr", fn: c.pdfOCR},
		}
	case constants.FormatDoc:
		return []strategy{{name: "doc-antiword", fn: c.docText}}
	case constants.FormatDocx:
		return []strategy{{name: "docx-xml", fn: c.docxText}}
	case constants.FormatImage:
		return []strategy{{name: "image-ocr", fn: c.imageOCR}}
	default:
		return nil
	}
}

// run is the escalation driver. Both an error and whitespace-only text move
// on to the next strategy; a strategy is never retried. Detail keeps only
// the final strategy's error, and only when no text was recovered at all.
func (c *Cascade) run(ctx context.Context, strategies []strategy, data []byte) Outcome {
	var lastErr error
	for _, s := range strategies {
		text, err := s.fn(ctx, data)
		if err != nil {
			c.logger.Warn("extraction strategy failed", "strategy", s.name, "error", err)
			lastErr = err
			continue
		}
		lastErr = nil
		if strings.TrimSpace(text) == "" {
			c.logger.Debug("extraction strategy returned no text", "strategy", s.name)
			continue
		}
		c.logger.Info("extraction succeeded", "strategy", s.name, "chars", len(text))
		return Outcome{Text: c.truncate(text)}
	}

	out := Outcome{Failed: true}
	if lastErr != nil {
		out.Detail = lastErr.Error()
	}
	return out
}

// truncate enforces the per-document character ceiling with a trailing
// human-readable marker.
func (c *Cascade) truncate(text string) string {
	if len(text) <= c.cfg.MaxChars {
		return text
	}
	return text[:c.cfg.MaxChars] + constants.TruncationMarker
}
