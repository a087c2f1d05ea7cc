package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/caseflow/casepipe/internal/ingest"
)

type fileResponse struct {
	URL              string `json:"url"`
	Pathname         string `json:"pathname"`
	ContentType      string `json:"contentType"`
	ExtractedText    string `json:"extractedText,omitempty"`
	ExtractionFailed bool   `json:"extractionFailed,omitempty"`
	DocumentType     string `json:"documentType,omitempty"`
	ExtractionDetail string `json:"extractionDetail,omitempty"`
}

func toFileResponse(r ingest.Result) fileResponse {
	return fileResponse{
		URL:              r.URL,
		Pathname:         r.Pathname,
		ContentType:      r.ContentType,
		ExtractedText:    r.ExtractedText,
		ExtractionFailed: r.ExtractionFailed,
		DocumentType:     string(r.DocumentLabel),
		ExtractionDetail: r.ExtractionDetail,
	}
}

// handleUpload is the inline path for small files: the whole payload
// arrives in one multipart request.
func (s *Server) handleUpload(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file sent"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}

	res, err := s.coordinator.IngestInline(c.Request.Context(), ingest.InlineRequest{
		Data:        data,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Filename:    fileHeader.Filename,
		UserID:      uid,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFileResponse(res))
}

type uploadTokenRequest struct {
	Filename string `json:"filename" binding:"required"`
}

// handleUploadToken is phase 1 of the large-file path.
func (s *Server) handleUploadToken(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}

	var req uploadTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cred, err := s.coordinator.RequestUploadCredential(c.Request.Context(), req.Filename, uid)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"allowedContentTypes": cred.AllowedContentTypes,
		"pathname":            cred.Pathname,
		"token":               cred.Token,
		"tokenPayload":        cred.TokenPayload,
		"expiresAt":           cred.ExpiresAt,
	})
}

type processRequest struct {
	URL         string `json:"url" binding:"required"`
	Pathname    string `json:"pathname" binding:"required"`
	ContentType string `json:"contentType"`
	Filename    string `json:"filename" binding:"required"`
	Token       string `json:"token" binding:"required"`
	ExpiresAt   int64  `json:"expiresAt" binding:"required"`
}

// handleProcess is phase 2 of the large-file path: the client finished its
// direct upload and we fetch the bytes back for extraction.
func (s *Server) handleProcess(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}

	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "required fields: url, pathname, filename, token, expiresAt"})
		return
	}

	res, err := s.coordinator.CompleteDirectUpload(c.Request.Context(), ingest.CompleteRequest{
		StorageURL:  req.URL,
		Pathname:    req.Pathname,
		ContentType: req.ContentType,
		Filename:    req.Filename,
		UserID:      uid,
		Token:       req.Token,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFileResponse(res))
}
