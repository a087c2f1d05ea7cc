package constants

import "time"

// Size and truncation ceilings. All of these are deploy-time constants,
// not runtime-tunable; they exist in one place so every layer agrees.
const (
	// MaxUploadBytes is the per-file ceiling for the inline upload path.
	MaxUploadBytes = 5 << 20

	// MaxFetchBytes caps the fetch-back of a directly-uploaded file.
	MaxFetchBytes = 100 << 20

	// FetchTimeout bounds the fetch-back of a directly-uploaded file.
	FetchTimeout = 30 * time.Second

	// MaxCharsPerExtract is the per-document ceiling applied to
	// extracted text before it leaves the cascade.
	MaxCharsPerExtract = 300_000

	// MaxCharsPerPart caps a single document inside one request prompt.
	MaxCharsPerPart = 35_000

	// MaxTotalDocChars caps all documents attached to one request.
	MaxTotalDocChars = 100_000

	// MaxOCRPages is the hard page cap for rasterized OCR. Pages past
	// the cap are skipped silently.
	MaxOCRPages = 50

	// ClassifySampleChars bounds how much text the classifier scores.
	ClassifySampleChars = 6_000

	// ArtifactChunkSize is the emission chunk length for generated
	// artifact content.
	ArtifactChunkSize = 400
)

// TruncationMarker is appended whenever text is hard-truncated at a ceiling.
const TruncationMarker = "\n\n[... text truncated ...]"
