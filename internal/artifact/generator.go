// Package artifact drives the parallel generation of the three defense
// review documents and their ordered, chunked delivery to the caller.
//
// The three generation calls run concurrently, but emission is strictly
// task order: evaluation first, then the lawyer script, then the
// representative script. A later task that finishes early simply sits in
// its resolved future until the loop reaches its index.
package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/caseflow/casepipe/constants"
)

// DocumentKind is the artifact kind announced on the stream.
const DocumentKind = "text"

// Confirmation is the fixed human-readable return message.
const Confirmation = "The 3 documents were created and are visible: evaluation, lawyer script and representative script."

// Request carries the three task titles in their fixed order plus an
// optional shared case summary.
type Request struct {
	EvaluationTitle           string
	LawyerScriptTitle         string
	RepresentativeScriptTitle string
	ContextSummary            string
	UserID                    string
}

// Result reports the three identifiers and titles in task order.
type Result struct {
	IDs          [3]uuid.UUID
	Titles       [3]string
	Confirmation string
}

type Generator struct {
	model  ModelClient
	store  DocumentStore
	logger *slog.Logger
}

func NewGenerator(model ModelClient, store DocumentStore, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{model: model, store: store, logger: logger}
}

type genResult struct {
	content string
	err     error
}

// Generate starts all three generation tasks at once, then drains them in
// index order: total wall-clock drops from roughly T1+T2+T3 to
// max(T1,T2,T3) plus emission time. Each artifact is persisted exactly
// once, after its emission completes, and only when an owning user is
// known. A persistence failure is logged but does not change the result;
// a generation failure fails the whole call.
func (g *Generator) Generate(ctx context.Context, req Request, stream StreamWriter) (Result, error) {
	titles := [3]string{req.EvaluationTitle, req.LawyerScriptTitle, req.RepresentativeScriptTitle}
	ids := [3]uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	var futures [3]chan genResult
	for i := range futures {
		futures[i] = make(chan genResult, 1)
		go func(i int) {
			content, err := g.model.GenerateDocument(ctx, titles[i], req.ContextSummary)
			futures[i] <- genResult{content: content, err: err}
		}(i)
	}

	for i := 0; i < 3; i++ {
		var r genResult
		select {
		case r = <-futures[i]:
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
		if r.err != nil {
			return Result{}, fmt.Errorf("generate %q: %w", titles[i], r.err)
		}

		g.emit(stream, ids[i], titles[i], r.content)

		if req.UserID != "" {
			doc := Document{
				ID:        ids[i],
				UserID:    req.UserID,
				Title:     titles[i],
				Content:   r.content,
				Kind:      DocumentKind,
				CreatedAt: time.Now().UTC(),
			}
			if err := g.store.SaveDocument(ctx, doc); err != nil {
				g.logger.Error("persist generated document failed",
					"document_id", ids[i],
					"title", titles[i],
					"error", err,
				)
			}
		}
		g.logger.Info("artifact delivered", "index", i, "document_id", ids[i], "chars", len(r.content))
	}

	return Result{IDs: ids, Titles: titles, Confirmation: Confirmation}, nil
}

// emit writes one artifact's full signal sequence. Content goes out in
// fixed-size chunks rather than model deltas; the generation stream was
// already awaited, so chunking here trades latency for guaranteed order.
// Chunk boundaries back off to a rune start so a multibyte character is
// never split across two delta events.
func (g *Generator) emit(stream StreamWriter, id uuid.UUID, title, content string) {
	stream.Write(Event{Type: EventKind, Data: DocumentKind})
	stream.Write(Event{Type: EventID, Data: id.String()})
	stream.Write(Event{Type: EventTitle, Data: title})
	stream.Write(Event{Type: EventClear})

	for offset := 0; offset < len(content); {
		end := offset + constants.ArtifactChunkSize
		if end >= len(content) {
			end = len(content)
		} else {
			for end > offset && !utf8.RuneStart(content[end]) {
				end--
			}
			if end == offset {
				// not UTF-8 at all, fall back to the raw cut
				end = offset + constants.ArtifactChunkSize
			}
		}
		stream.Write(Event{Type: EventTextDelta, Data: content[offset:end]})
		offset = end
	}

	stream.Write(Event{Type: EventFinish})
}
