package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/caseflow/casepipe/constants"
	"github.com/caseflow/casepipe/internal/artifact"
	"github.com/caseflow/casepipe/internal/budget"
	"github.com/caseflow/casepipe/internal/cache"
	"github.com/caseflow/casepipe/internal/repository"
)

// attachedDocument is one previously-ingested case file the client sends
// along as generation context.
type attachedDocument struct {
	Name string `json:"name"`
	Text string `json:"text"`
	Type string `json:"documentType"`
}

type generateRequest struct {
	EvaluationTitle           string             `json:"evaluationTitle" binding:"required"`
	LawyerScriptTitle         string             `json:"lawyerScriptTitle" binding:"required"`
	RepresentativeScriptTitle string             `json:"representativeScriptTitle" binding:"required"`
	ContextSummary            string             `json:"contextSummary"`
	Documents                 []attachedDocument `json:"documents"`
}

// buildContext runs the attached documents through the aggregate budget and
// renders them, petition first, after the caller's own summary.
func buildContext(summary string, docs []attachedDocument) string {
	parts := make([]budget.Part, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, budget.Part{
			Name:  d.Name,
			Text:  d.Text,
			Label: constants.DocumentLabel(d.Type),
		})
	}

	var b strings.Builder
	b.WriteString(summary)
	for _, p := range budget.AssembleParts(parts) {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Documento: ")
		b.WriteString(p.Name)
		b.WriteString("\n")
		b.WriteString(p.Text)
	}
	return b.String()
}

// sseStream adapts the artifact emission protocol onto server-sent events.
type sseStream struct {
	c *gin.Context
}

func (s sseStream) Write(ev artifact.Event) {
	s.c.SSEvent(string(ev.Type), ev.Data)
	s.c.Writer.Flush()
}

// handleGenerate runs the three-document generation and streams the
// ordered emission as SSE, finishing with a result event carrying the ids
// and titles in task order.
func (s *Server) handleGenerate(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "required fields: evaluationTitle, lawyerScriptTitle, representativeScriptTitle"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")

	res, err := s.generator.Generate(c.Request.Context(), artifact.Request{
		EvaluationTitle:           req.EvaluationTitle,
		LawyerScriptTitle:         req.LawyerScriptTitle,
		RepresentativeScriptTitle: req.RepresentativeScriptTitle,
		ContextSummary:            buildContext(req.ContextSummary, req.Documents),
		UserID:                    uid,
	}, sseStream{c: c})
	if err != nil {
		s.logger.Error("artifact generation failed", "error", err)
		c.SSEvent("error", "document generation failed")
		c.Writer.Flush()
		return
	}

	ids := make([]string, len(res.IDs))
	for i, id := range res.IDs {
		ids[i] = id.String()
	}
	c.SSEvent("result", gin.H{
		"ids":     ids,
		"titles":  res.Titles,
		"content": res.Confirmation,
	})
	c.Writer.Flush()
}

// handleGetDocument serves a document's versions, cache first.
func (s *Server) handleGetDocument(c *gin.Context) {
	uid := userID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}

	id, err := uuid.Parse(c.Query("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a UUID"})
		return
	}

	if docs, ok := s.docCache.Get(uid, id); ok {
		c.JSON(http.StatusOK, docs)
		return
	}

	docs, err := s.documents.ListVersions(c.Request.Context(), uid, id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if len(docs) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}

	s.docCache.Set(uid, id, docs)
	c.JSON(http.StatusOK, docs)
}

// DocumentStore wires generated artifacts into the repository and keeps
// the read cache coherent on writes.
type DocumentStore struct {
	Repo  repository.DocumentRepository
	Cache *cache.DocumentCache
}

func (s *DocumentStore) SaveDocument(ctx context.Context, doc artifact.Document) error {
	if err := s.Repo.Save(ctx, repository.Document{
		ID:        doc.ID,
		UserID:    doc.UserID,
		Title:     doc.Title,
		Content:   doc.Content,
		Kind:      doc.Kind,
		CreatedAt: doc.CreatedAt,
	}); err != nil {
		return err
	}
	s.Cache.Delete(doc.UserID, doc.ID)
	return nil
}
