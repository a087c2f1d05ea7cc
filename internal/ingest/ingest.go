// Package ingest coordinates upload and extraction for incoming case
// files. Small files arrive inline and are stored and extracted
// concurrently; large files go through a two-phase direct upload where the
// bytes never transit this service on the way in.
package ingest

import (
	"github.com/caseflow/casepipe/constants"
)

// InlineRequest is a full byte payload received synchronously.
type InlineRequest struct {
	Data        []byte
	ContentType string // declared by the client; may be empty or generic
	Filename    string
	UserID      string
}

// CompleteRequest finishes a two-phase direct upload after the client has
// written the bytes to storage itself. Token and ExpiresAt echo the
// credential issued in phase 1 and are verified against the pathname.
type CompleteRequest struct {
	StorageURL  string
	Pathname    string
	ContentType string
	Filename    string
	UserID      string
	Token       string
	ExpiresAt   int64
}

// Result is the shared response shape for both entry paths.
type Result struct {
	URL         string
	Pathname    string
	ContentType string

	ExtractedText    string
	ExtractionFailed bool
	DocumentLabel    constants.DocumentLabel
	ExtractionDetail string
}

// Credential is a short-lived, scope-limited permission for a direct
// client upload into an allow-listed namespace.
type Credential struct {
	AllowedContentTypes []string
	Pathname            string
	Token               string
	TokenPayload        string // JSON: {"userId": ...}
	ExpiresAt           int64  // unix seconds
}
