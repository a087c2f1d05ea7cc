package ingest

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseflow/casepipe/constants"
	"github.com/caseflow/casepipe/internal/common"
	"github.com/caseflow/casepipe/internal/extract"
	"github.com/caseflow/casepipe/internal/storage"
)

type fakeExtractor struct {
	mu        sync.Mutex
	outcome   extract.Outcome
	calls     int
	gotData   []byte
	gotFormat constants.Format
}

func (f *fakeExtractor) Extract(_ context.Context, data []byte, format constants.Format) extract.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.gotData = data
	f.gotFormat = format
	return f.outcome
}

type fakeUploader struct {
	mu    sync.Mutex
	loc   storage.Location
	err   error
	calls int
	gotCT string
}

func (f *fakeUploader) Upload(_ context.Context, userID, filename string, _ []byte, contentType string) (storage.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.gotCT = contentType
	if f.err != nil {
		return storage.Location{}, f.err
	}
	return f.loc, nil
}

func newTestCoordinator(extractor extract.TextExtractor, uploader storage.Uploader, cfg Config) *Coordinator {
	return NewCoordinator(extractor, uploader, nil, cfg, nil)
}

func TestIngestInlineRejectsEmptyPayload(t *testing.T) {
	c := newTestCoordinator(&fakeExtractor{}, &fakeUploader{}, Config{})
	_, err := c.IngestInline(context.Background(), InlineRequest{Filename: "a.pdf", UserID: "u1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrRejected))
}

func TestIngestInlineRejectsOversizedPayload(t *testing.T) {
	c := newTestCoordinator(&fakeExtractor{}, &fakeUploader{}, Config{})
	_, err := c.IngestInline(context.Background(), InlineRequest{
		Data:     make([]byte, constants.MaxUploadBytes+1),
		Filename: "a.pdf",
		UserID:   "u1",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrRejected))
	assert.Contains(t, err.Error(), "5 MB")
}

func TestIngestInlineStoresAndExtracts(t *testing.T) {
	extractor := &fakeExtractor{outcome: extract.Outcome{Text: "contestação apresentada preliminarmente"}}
	uploader := &fakeUploader{loc: storage.Location{URL: "https://store/u1/1-a.pdf", Pathname: "u1/1-a.pdf"}}
	c := newTestCoordinator(extractor, uploader, Config{})

	data := []byte("%PDF-1.4 fake")
	res, err := c.IngestInline(context.Background(), InlineRequest{
		Data:     data,
		Filename: "a.pdf",
		UserID:   "u1",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://store/u1/1-a.pdf", res.URL)
	assert.Equal(t, "u1/1-a.pdf", res.Pathname)
	assert.Equal(t, "application/pdf", res.ContentType)
	assert.Equal(t, "contestação apresentada preliminarmente", res.ExtractedText)
	assert.False(t, res.ExtractionFailed)
	assert.Equal(t, constants.LabelDefense, res.DocumentLabel)

	assert.Equal(t, 1, extractor.calls)
	assert.Equal(t, constants.FormatPDF, extractor.gotFormat)
	assert.True(t, bytes.Equal(data, extractor.gotData))
	assert.Equal(t, 1, uploader.calls)
	assert.Equal(t, "application/pdf", uploader.gotCT)
}

func TestIngestInlineUnknownTypeIsStoreOnly(t *testing.T) {
	extractor := &fakeExtractor{outcome: extract.Outcome{Text: "should never appear"}}
	uploader := &fakeUploader{loc: storage.Location{URL: "https://store/u1/1-notes.txt", Pathname: "u1/1-notes.txt"}}
	c := newTestCoordinator(extractor, uploader, Config{})

	res, err := c.IngestInline(context.Background(), InlineRequest{
		Data:     []byte("plain text"),
		Filename: "notes.txt",
		UserID:   "u1",
	})
	require.NoError(t, err)

	assert.Zero(t, extractor.calls)
	assert.Equal(t, 1, uploader.calls)
	assert.Equal(t, "application/octet-stream", res.ContentType)
	assert.Empty(t, res.ExtractedText)
	assert.False(t, res.ExtractionFailed)
	assert.Empty(t, res.DocumentLabel)
}

func TestIngestInlineUploadFailureFailsTheCall(t *testing.T) {
	extractor := &fakeExtractor{outcome: extract.Outcome{Text: "fine"}}
	uploader := &fakeUploader{err: errors.New("storage down")}
	c := newTestCoordinator(extractor, uploader, Config{})

	_, err := c.IngestInline(context.Background(), InlineRequest{
		Data:     []byte("%PDF-1.4 fake"),
		Filename: "a.pdf",
		UserID:   "u1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage down")
}

func TestIngestInlineExtractionFailureDegrades(t *testing.T) {
	extractor := &fakeExtractor{outcome: extract.Outcome{Failed: true, Detail: "pdftoppm: exit status 1"}}
	uploader := &fakeUploader{loc: storage.Location{URL: "https://store/u1/1-a.pdf", Pathname: "u1/1-a.pdf"}}
	c := newTestCoordinator(extractor, uploader, Config{})

	res, err := c.IngestInline(context.Background(), InlineRequest{
		Data:     []byte("%PDF-1.4 fake"),
		Filename: "a.pdf",
		UserID:   "u1",
	})
	require.NoError(t, err)
	assert.True(t, res.ExtractionFailed)
	assert.Equal(t, "pdftoppm: exit status 1", res.ExtractionDetail)
	assert.Empty(t, res.DocumentLabel)
}

func TestIngestInlineImagesAreNeverLabelled(t *testing.T) {
	extractor := &fakeExtractor{outcome: extract.Outcome{Text: "contestação preliminarmente improcedência"}}
	uploader := &fakeUploader{loc: storage.Location{URL: "https://store/u1/1-scan.png", Pathname: "u1/1-scan.png"}}
	c := newTestCoordinator(extractor, uploader, Config{})

	res, err := c.IngestInline(context.Background(), InlineRequest{
		Data:     []byte("png bytes"),
		Filename: "scan.png",
		UserID:   "u1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.ExtractedText)
	assert.Empty(t, res.DocumentLabel)
}
