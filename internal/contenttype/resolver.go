// Package contenttype resolves a declared MIME type and filename into the
// canonical content type every downstream decision keys on.
package contenttype

import (
	"strings"

	"github.com/caseflow/casepipe/constants"
)

// Canonical content types for the accepted file categories.
const (
	JPEG        = "image/jpeg"
	PNG         = "image/png"
	PDF         = "application/pdf"
	Doc         = "application/msword"
	Docx        = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	OctetStream = "application/octet-stream"
)

var knownTypes = map[string]struct{}{
	JPEG: {},
	PNG:  {},
	PDF:  {},
	Doc:  {},
	Docx: {},
}

// Resolve returns the canonical content type for a file. A known declared
// MIME type is trusted as-is; an empty or generic declaration falls back to
// the filename extension, since browsers routinely send
// application/octet-stream for word-processor formats. Resolve never fails:
// unrecognized inputs come back as OctetStream, which downstream stages
// treat as "store only, do not extract".
func Resolve(declared, filename string) string {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if _, ok := knownTypes[declared]; ok {
		return declared
	}
	return FromFilename(filename)
}

// FromFilename maps a filename extension to a canonical content type,
// ignoring query-string and fragment suffixes.
func FromFilename(filename string) string {
	base := filename
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	ext := ""
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		ext = constants.NormalizeExt(base[i:])
	}
	switch ext {
	case "pdf":
		return PDF
	case "doc":
		return Doc
	case "docx":
		return Docx
	case "jpg", "jpeg":
		return JPEG
	case "png":
		return PNG
	default:
		return OctetStream
	}
}

// Category maps a canonical content type to its Format.
func Category(contentType string) constants.Format {
	switch contentType {
	case PDF:
		return constants.FormatPDF
	case Doc:
		return constants.FormatDoc
	case Docx:
		return constants.FormatDocx
	case JPEG, PNG:
		return constants.FormatImage
	default:
		return constants.FormatUnknown
	}
}

// Accepted lists every content type a direct-upload credential allows.
func Accepted() []string {
	return []string{JPEG, PNG, PDF, Doc, Docx}
}
