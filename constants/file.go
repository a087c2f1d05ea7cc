package constants

import "strings"

// Format is the canonical document category resolved for an uploaded file.
type Format string

// Stable values (used in logs and dispatch decisions).
const (
	FormatPDF     Format = "PDF"
	FormatDoc     Format = "DOC"
	FormatDocx    Format = "DOCX"
	FormatImage   Format = "IMAGE"
	FormatUnknown Format = "UNKNOWN"
)

// AllowedExtensions holds the file extensions accepted for case-file uploads.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"doc":  {},
	"docx": {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to its Format.
func MapExtToFormat(ext string) Format {
	switch NormalizeExt(ext) {
	case "pdf":
		return FormatPDF
	case "doc":
		return FormatDoc
	case "docx":
		return FormatDocx
	case "jpg", "jpeg", "png":
		return FormatImage
	default:
		return FormatUnknown
	}
}
