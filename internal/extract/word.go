package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// docText extracts legacy .doc files through antiword.
func (c *Cascade) docText(ctx context.Context, data []byte) (string, error) {
	tmpFile, err := os.CreateTemp("", "casepipe-doc-*.doc")
	if err != nil {
		return "", err
	}
	path := tmpFile.Name()
	defer func() {
		if err := os.Remove(path); err != nil {
			c.logger.Warn("failed to remove doc temp file", "path", path, "error", err)
		}
	}()
	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return "", err
	}
	if err := tmpFile.Close(); err != nil {
		return "", err
	}

	// antiword -m UTF-8 <file>
	out, errb, err := c.runner.Run(ctx, c.cfg.Antiword, "-m", "UTF-8", path)
	if err != nil {
		return "", fmt.Errorf("antiword: %w: %s", err, capStderr(string(errb), 512))
	}
	return string(out), nil
}

// docxText pulls the document body straight out of the OOXML archive:
// word/document.xml, <w:t> runs joined per paragraph.
func (c *Cascade) docxText(_ context.Context, data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return "", fmt.Errorf("open document.xml: %w", err)
			}
			defer func() { _ = rc.Close() }()
			return decodeDocxBody(rc)
		}
	}
	return "", fmt.Errorf("docx has no word/document.xml")
}

func decodeDocxBody(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			} else if t.Name.Local == "tab" {
				b.WriteByte('\t')
			} else if t.Name.Local == "br" {
				b.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			} else if t.Name.Local == "p" {
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}
