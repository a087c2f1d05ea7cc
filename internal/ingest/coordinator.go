package ingest

import (
	"context"
	"log/slog"
	"sync"

	"github.com/go-resty/resty/v2"

	"github.com/caseflow/casepipe/constants"
	"github.com/caseflow/casepipe/internal/classify"
	"github.com/caseflow/casepipe/internal/common"
	"github.com/caseflow/casepipe/internal/contenttype"
	"github.com/caseflow/casepipe/internal/extract"
	"github.com/caseflow/casepipe/internal/storage"
)

// Config holds the coordinator's deploy-time knobs.
type Config struct {
	// AllowedHostSuffix is the storage domain suffix accepted for
	// fetch-back URLs, e.g. "supabase.co". Empty disallows completion.
	AllowedHostSuffix string
	// TokenSecret signs direct-upload credentials.
	TokenSecret string
}

// Coordinator is the public entry point for both ingestion paths.
type Coordinator struct {
	extractor extract.TextExtractor
	uploader  storage.Uploader
	http      *resty.Client
	cfg       Config
	logger    *slog.Logger
}

func NewCoordinator(extractor extract.TextExtractor, uploader storage.Uploader, httpClient *resty.Client, cfg Config, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = resty.New()
	}
	httpClient.SetTimeout(constants.FetchTimeout)
	// Fetch-back reads the body itself through a size-limited reader.
	httpClient.SetDoNotParseResponse(true)
	return &Coordinator{
		extractor: extractor,
		uploader:  uploader,
		http:      httpClient,
		cfg:       cfg,
		logger:    logger,
	}
}

// IngestInline stores the payload and extracts its text concurrently, then
// joins both results. The cascade may consume the buffer it is handed, so
// the uploader gets its own copy. An extraction failure degrades the
// response; an upload failure fails the call.
func (c *Coordinator) IngestInline(ctx context.Context, req InlineRequest) (Result, error) {
	if len(req.Data) == 0 {
		return Result{}, common.RejectionError("empty file payload")
	}
	if len(req.Data) > constants.MaxUploadBytes {
		return Result{}, common.RejectionErrorf("file exceeds the %d MB limit", constants.MaxUploadBytes/(1<<20))
	}

	ct := contenttype.Resolve(req.ContentType, req.Filename)
	format := contenttype.Category(ct)

	uploadCopy := make([]byte, len(req.Data))
	copy(uploadCopy, req.Data)

	var (
		wg        sync.WaitGroup
		outcome   extract.Outcome
		loc       storage.Location
		uploadErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		loc, uploadErr = c.uploader.Upload(ctx, req.UserID, req.Filename, uploadCopy, ct)
	}()

	if format != constants.FormatUnknown {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome = c.extractor.Extract(ctx, req.Data, format)
		}()
	}

	wg.Wait()

	if uploadErr != nil {
		c.logger.Error("inline upload failed", "filename", req.Filename, "error", uploadErr)
		return Result{}, uploadErr
	}

	res := c.assemble(loc, ct, format, outcome)
	c.logger.Info("inline ingest completed",
		"pathname", res.Pathname,
		"content_type", ct,
		"extraction_failed", res.ExtractionFailed,
		"label", res.DocumentLabel,
	)
	return res, nil
}

// assemble merges the storage location and extraction outcome into the
// shared response shape. A label is only ever attached to non-empty text.
func (c *Coordinator) assemble(loc storage.Location, ct string, format constants.Format, outcome extract.Outcome) Result {
	res := Result{
		URL:         loc.URL,
		Pathname:    loc.Pathname,
		ContentType: ct,
	}
	if format == constants.FormatUnknown {
		// store only, no extraction fields
		return res
	}
	res.ExtractedText = outcome.Text
	res.ExtractionFailed = outcome.Failed
	res.ExtractionDetail = outcome.Detail
	if outcome.Text != "" && (format == constants.FormatPDF || format == constants.FormatDoc || format == constants.FormatDocx) {
		if label, ok := classify.Classify(outcome.Text); ok {
			res.DocumentLabel = label
		}
	}
	return res
}
