package ingest

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/caseflow/casepipe/constants"
	"github.com/caseflow/casepipe/internal/common"
	"github.com/caseflow/casepipe/internal/contenttype"
	"github.com/caseflow/casepipe/internal/storage"
)

// rejectedExtensionMessage is the fixed message for disallowed extensions.
const rejectedExtensionMessage = "accepted types: JPEG, PNG, PDF, DOC or DOCX"

const credentialTTL = 15 * time.Minute

// RequestUploadCredential is phase 1 of the large-file path: it validates
// the requested extension, binds a sanitized per-user pathname, and signs a
// short-lived token scoped to that pathname. The file bytes never transit
// this service in this phase.
func (c *Coordinator) RequestUploadCredential(_ context.Context, filename, userID string) (Credential, error) {
	if !allowedExtension(filename) {
		return Credential{}, common.RejectionError(rejectedExtensionMessage)
	}
	if c.cfg.TokenSecret == "" {
		return Credential{}, common.ConfigError("direct upload is not configured: set UPLOAD_TOKEN_SECRET")
	}

	pathname := storage.BuildPathname(userID, filename, time.Now())
	expires := time.Now().Add(credentialTTL).Unix()
	payload, _ := json.Marshal(map[string]string{"userId": userID})

	c.logger.Info("issued direct upload credential", "pathname", pathname, "expires_at", expires)
	return Credential{
		AllowedContentTypes: contenttype.Accepted(),
		Pathname:            pathname,
		Token:               signCredential(c.cfg.TokenSecret, pathname, expires),
		TokenPayload:        string(payload),
		ExpiresAt:           expires,
	}, nil
}

// CompleteDirectUpload is phase 2: the client has written the bytes to
// storage, so fetch them back from the allow-listed storage host and run
// extraction only. The echoed credential is verified against the pathname
// before anything is fetched. The result shape matches the inline path.
func (c *Coordinator) CompleteDirectUpload(ctx context.Context, req CompleteRequest) (Result, error) {
	if req.StorageURL == "" || req.Pathname == "" || req.Filename == "" {
		return Result{}, common.RejectionError("storageUrl, pathname and filename are required")
	}
	if !c.allowedStorageURL(req.StorageURL) {
		return Result{}, common.RejectionError("file URL is not allowed")
	}
	if c.cfg.TokenSecret == "" {
		return Result{}, common.ConfigError("direct upload is not configured: set UPLOAD_TOKEN_SECRET")
	}
	if !c.validCredential(req.Pathname, req.Token, req.ExpiresAt) {
		return Result{}, common.RejectionError("invalid or expired upload token")
	}

	ct := contenttype.Resolve(req.ContentType, req.Filename)
	format := contenttype.Category(ct)

	fetchCtx, cancel := context.WithTimeout(ctx, constants.FetchTimeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(fetchCtx).
		SetHeader("Accept", "*/*").
		Get(req.StorageURL)
	if err != nil {
		return Result{}, common.UpstreamErrorf("could not fetch the uploaded file: %v", err)
	}
	raw := resp.RawBody()
	if raw != nil {
		defer func() { _ = raw.Close() }()
	}
	if resp.IsError() {
		return Result{}, common.UpstreamErrorf("failed to fetch the uploaded file (%d)", resp.StatusCode())
	}

	// Refuse before buffering when the storage host declares the size;
	// the post-read check backstops chunked responses.
	if resp.RawResponse != nil && resp.RawResponse.ContentLength > constants.MaxFetchBytes {
		return Result{}, common.TooLargeErrorf("file too large to process (max %d MB)", constants.MaxFetchBytes/(1<<20))
	}

	data, err := io.ReadAll(io.LimitReader(raw, constants.MaxFetchBytes+1))
	if err != nil {
		return Result{}, common.UpstreamErrorf("could not read the uploaded file: %v", err)
	}
	if len(data) > constants.MaxFetchBytes {
		return Result{}, common.TooLargeErrorf("file too large to process (max %d MB)", constants.MaxFetchBytes/(1<<20))
	}

	outcome := c.extractor.Extract(ctx, data, format)
	res := c.assemble(storage.Location{URL: req.StorageURL, Pathname: req.Pathname}, ct, format, outcome)
	c.logger.Info("direct upload completed",
		"pathname", req.Pathname,
		"content_type", ct,
		"bytes", len(data),
		"extraction_failed", res.ExtractionFailed,
	)
	return res, nil
}

// allowedStorageURL guards the fetch-back against request forgery: only
// HTTPS URLs on the configured storage domain suffix are fetched.
func (c *Coordinator) allowedStorageURL(raw string) bool {
	if c.cfg.AllowedHostSuffix == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "https" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	suffix := strings.ToLower(c.cfg.AllowedHostSuffix)
	return host == suffix || strings.HasSuffix(host, "."+suffix)
}

func allowedExtension(filename string) bool {
	base := filename
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	ext := ""
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		ext = constants.NormalizeExt(base[i:])
	}
	_, ok := constants.AllowedExtensions[ext]
	return ok
}

// validCredential checks the echoed phase-1 token: unexpired, and an HMAC
// match for exactly this pathname and expiry.
func (c *Coordinator) validCredential(pathname, token string, expires int64) bool {
	if token == "" || expires < time.Now().Unix() {
		return false
	}
	want := signCredential(c.cfg.TokenSecret, pathname, expires)
	return hmac.Equal([]byte(want), []byte(token))
}

func signCredential(secret, pathname string, expires int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s|%d", pathname, expires)
	return hex.EncodeToString(mac.Sum(nil))
}
