package artifact

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseflow/casepipe/constants"
)

type fakeModel struct {
	mu      sync.Mutex
	content map[string]string
	errs    map[string]error
	delays  map[string]time.Duration
	calls   []string
}

func (m *fakeModel) GenerateDocument(_ context.Context, title, _ string) (string, error) {
	if d := m.delays[title]; d > 0 {
		time.Sleep(d)
	}
	m.mu.Lock()
	m.calls = append(m.calls, title)
	m.mu.Unlock()
	if err := m.errs[title]; err != nil {
		return "", err
	}
	return m.content[title], nil
}

type recordingStream struct {
	events []Event
}

func (s *recordingStream) Write(ev Event) {
	s.events = append(s.events, ev)
}

type recordingStore struct {
	mu   sync.Mutex
	docs []Document
	err  error
}

func (s *recordingStore) SaveDocument(_ context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, doc)
	return s.err
}

func newRequest() Request {
	return Request{
		EvaluationTitle:           "Avaliação do caso",
		LawyerScriptTitle:         "Roteiro do advogado",
		RepresentativeScriptTitle: "Roteiro do preposto",
		ContextSummary:            "resumo",
		UserID:                    "u1",
	}
}

func TestGenerateEmitsInTaskOrder(t *testing.T) {
	req := newRequest()
	model := &fakeModel{
		content: map[string]string{
			req.EvaluationTitle:           "conteúdo A",
			req.LawyerScriptTitle:         "conteúdo B",
			req.RepresentativeScriptTitle: "conteúdo C",
		},
		// The first task finishes last; its artifact must still be
		// emitted first.
		delays: map[string]time.Duration{req.EvaluationTitle: 50 * time.Millisecond},
	}
	stream := &recordingStream{}
	store := &recordingStore{}
	g := NewGenerator(model, store, nil)

	res, err := g.Generate(context.Background(), req, stream)
	require.NoError(t, err)

	assert.Equal(t, [3]string{req.EvaluationTitle, req.LawyerScriptTitle, req.RepresentativeScriptTitle}, res.Titles)
	assert.Equal(t, Confirmation, res.Confirmation)

	// Three artifacts, six events each: kind, id, title, clear, one
	// delta per short content, finish.
	require.Len(t, stream.events, 18)
	for i := 0; i < 3; i++ {
		seq := stream.events[i*6 : (i+1)*6]
		assert.Equal(t, EventKind, seq[0].Type)
		assert.Equal(t, DocumentKind, seq[0].Data)
		assert.Equal(t, EventID, seq[1].Type)
		assert.Equal(t, res.IDs[i].String(), seq[1].Data)
		assert.Equal(t, EventTitle, seq[2].Type)
		assert.Equal(t, res.Titles[i], seq[2].Data)
		assert.Equal(t, EventClear, seq[3].Type)
		assert.Equal(t, EventTextDelta, seq[4].Type)
		assert.Equal(t, EventFinish, seq[5].Type)
	}
	assert.Equal(t, "conteúdo A", stream.events[4].Data)
	assert.Equal(t, "conteúdo B", stream.events[10].Data)
	assert.Equal(t, "conteúdo C", stream.events[16].Data)
}

func TestGenerateChunksLongContent(t *testing.T) {
	req := newRequest()
	long := strings.Repeat("x", constants.ArtifactChunkSize*2+100)
	model := &fakeModel{
		content: map[string]string{
			req.EvaluationTitle:           long,
			req.LawyerScriptTitle:         "b",
			req.RepresentativeScriptTitle: "c",
		},
	}
	stream := &recordingStream{}
	g := NewGenerator(model, &recordingStore{}, nil)

	_, err := g.Generate(context.Background(), req, stream)
	require.NoError(t, err)

	var deltas []string
	for _, ev := range stream.events {
		if ev.Type == EventTextDelta {
			deltas = append(deltas, ev.Data)
		}
		if ev.Type == EventFinish {
			break
		}
	}
	require.Len(t, deltas, 3)
	assert.Len(t, deltas[0], constants.ArtifactChunkSize)
	assert.Len(t, deltas[1], constants.ArtifactChunkSize)
	assert.Len(t, deltas[2], 100)
	assert.Equal(t, long, strings.Join(deltas, ""))
}

func TestGenerateKeepsMultibyteRunesIntactAcrossChunks(t *testing.T) {
	req := newRequest()
	// Three-byte runes never divide the 400-byte chunk size evenly, so a
	// byte-indexed cut would split one across two deltas.
	long := strings.Repeat("€", constants.ArtifactChunkSize)
	model := &fakeModel{
		content: map[string]string{
			req.EvaluationTitle:           long,
			req.LawyerScriptTitle:         "b",
			req.RepresentativeScriptTitle: "c",
		},
	}
	stream := &recordingStream{}
	g := NewGenerator(model, &recordingStore{}, nil)

	_, err := g.Generate(context.Background(), req, stream)
	require.NoError(t, err)

	var deltas []string
	for _, ev := range stream.events {
		if ev.Type == EventTextDelta {
			deltas = append(deltas, ev.Data)
		}
		if ev.Type == EventFinish {
			break
		}
	}
	require.NotEmpty(t, deltas)
	for i, d := range deltas {
		assert.True(t, utf8.ValidString(d), "delta %d is not valid UTF-8", i)
		assert.LessOrEqual(t, len(d), constants.ArtifactChunkSize)
	}
	assert.Equal(t, long, strings.Join(deltas, ""))
}

func TestGeneratePersistsEachArtifactOnce(t *testing.T) {
	req := newRequest()
	model := &fakeModel{
		content: map[string]string{
			req.EvaluationTitle:           "a",
			req.LawyerScriptTitle:         "b",
			req.RepresentativeScriptTitle: "c",
		},
	}
	store := &recordingStore{}
	g := NewGenerator(model, store, nil)

	res, err := g.Generate(context.Background(), req, &recordingStream{})
	require.NoError(t, err)

	require.Len(t, store.docs, 3)
	for i, doc := range store.docs {
		assert.Equal(t, res.IDs[i], doc.ID)
		assert.Equal(t, "u1", doc.UserID)
		assert.Equal(t, res.Titles[i], doc.Title)
		assert.Equal(t, DocumentKind, doc.Kind)
		assert.False(t, doc.CreatedAt.IsZero())
	}
}

func TestGenerateSkipsPersistenceWithoutAUser(t *testing.T) {
	req := newRequest()
	req.UserID = ""
	model := &fakeModel{
		content: map[string]string{
			req.EvaluationTitle:           "a",
			req.LawyerScriptTitle:         "b",
			req.RepresentativeScriptTitle: "c",
		},
	}
	store := &recordingStore{}
	g := NewGenerator(model, store, nil)

	_, err := g.Generate(context.Background(), req, &recordingStream{})
	require.NoError(t, err)
	assert.Empty(t, store.docs)
}

func TestGeneratePersistenceFailureDoesNotFailTheCall(t *testing.T) {
	req := newRequest()
	model := &fakeModel{
		content: map[string]string{
			req.EvaluationTitle:           "a",
			req.LawyerScriptTitle:         "b",
			req.RepresentativeScriptTitle: "c",
		},
	}
	store := &recordingStore{err: errors.New("db down")}
	g := NewGenerator(model, store, nil)

	res, err := g.Generate(context.Background(), req, &recordingStream{})
	require.NoError(t, err)
	assert.Equal(t, Confirmation, res.Confirmation)
	assert.Len(t, store.docs, 3)
}

func TestGenerateFailsWhenAnyTaskFails(t *testing.T) {
	req := newRequest()
	model := &fakeModel{
		content: map[string]string{
			req.EvaluationTitle:           "a",
			req.RepresentativeScriptTitle: "c",
		},
		errs: map[string]error{req.LawyerScriptTitle: errors.New("model unavailable")},
	}
	g := NewGenerator(model, &recordingStore{}, nil)

	_, err := g.Generate(context.Background(), req, &recordingStream{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), req.LawyerScriptTitle)
}

func TestGenerateHonorsContextCancellation(t *testing.T) {
	req := newRequest()
	model := &fakeModel{
		content: map[string]string{
			req.EvaluationTitle:           "a",
			req.LawyerScriptTitle:         "b",
			req.RepresentativeScriptTitle: "c",
		},
		delays: map[string]time.Duration{req.EvaluationTitle: time.Second},
	}
	g := NewGenerator(model, &recordingStore{}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := g.Generate(ctx, req, &recordingStream{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
