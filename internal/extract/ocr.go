package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// pdfOCR rasterizes each page and runs OCR on the images. Pages beyond the
// configured cap are skipped, not an error. A page whose OCR fails is
// swallowed so the remaining pages still contribute text.
func (c *Cascade) pdfOCR(ctx context.Context, data []byte) (string, error) {
	tmpDir, err := os.MkdirTemp("", "casepipe-ocr-*")
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			c.logger.Warn("failed to remove ocr temp dir", "dir", tmpDir, "error", err)
		}
	}()

	src := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(src, data, 0o600); err != nil {
		return "", err
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := c.runner.Run(ctx, c.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", c.cfg.DPI), "-png", src, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %w: %s", err, capStderr(string(errb), 512))
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) > c.cfg.MaxPages {
		c.logger.Info("ocr page cap reached", "pages", len(matches), "cap", c.cfg.MaxPages)
		matches = matches[:c.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("pdftoppm rendered no pages")
	}

	var b strings.Builder
	for _, img := range matches {
		txt, err := c.tesseract(ctx, img)
		if err != nil {
			c.logger.Warn("ocr page failed", "image", filepath.Base(img), "error", err)
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n") // keep a clear page break marker
		}
		b.WriteString(txt)
	}
	return b.String(), nil
}

// imageOCR runs OCR on a standalone image upload.
func (c *Cascade) imageOCR(ctx context.Context, data []byte) (string, error) {
	tmpFile, err := os.CreateTemp("", "casepipe-img-*")
	if err != nil {
		return "", err
	}
	path := tmpFile.Name()
	defer func() {
		if err := os.Remove(path); err != nil {
			c.logger.Warn("failed to remove ocr temp file", "path", path, "error", err)
		}
	}()
	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return "", err
	}
	if err := tmpFile.Close(); err != nil {
		return "", err
	}
	return c.tesseract(ctx, path)
}

func (c *Cascade) tesseract(ctx context.Context, path string) (string, error) {
	// tesseract <file> stdout -l <lang>
	out, errb, err := c.runner.Run(ctx, c.cfg.Tesseract, path, "stdout", "-l", c.cfg.TesseractLang)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, capStderr(string(errb), 512))
	}
	return string(out), nil
}
