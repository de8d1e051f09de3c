package chat

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/praxkit/praxis-chat/embeddings"
	"github.com/praxkit/praxis-chat/guardrail"
	"github.com/praxkit/praxis-chat/llm"
	"github.com/praxkit/praxis-chat/tenant"
)

var testTenantID = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

type stubTenantStore struct {
	tenant tenant.Tenant
	vars   tenant.Variables
	err    error
}

func (s *stubTenantStore) TenantBySlug(ctx context.Context, slug string) (tenant.Tenant, error) {
	if s.err != nil {
		return tenant.Tenant{}, s.err
	}
	if slug != s.tenant.Slug {
		return tenant.Tenant{}, tenant.ErrNotFound
	}
	return s.tenant, nil
}

func (s *stubTenantStore) Variables(ctx context.Context, tenantID uuid.UUID) (tenant.Variables, error) {
	if s.err != nil {
		return tenant.Variables{}, s.err
	}
	return s.vars, nil
}

var _ tenant.Store = (*stubTenantStore)(nil)

type stubEmbedder struct {
	vectors [][]float32
	err     error
	calls   int
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.vectors, nil
}

var _ embeddings.Embedder = (*stubEmbedder)(nil)

type stubKnowledgeStore struct {
	results []ChunkMatch
	err     error

	calls        int
	lastTenantID uuid.UUID
	lastLimit    int
}

func (s *stubKnowledgeStore) SimilarChunks(ctx context.Context, tenantID uuid.UUID, embedding []float32, limit int) ([]ChunkMatch, error) {
	s.calls++
	s.lastTenantID = tenantID
	s.lastLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

var _ KnowledgeStore = (*stubKnowledgeStore)(nil)

type stubLLM struct {
	answer string
	err    error

	calls        int
	lastMessages []llm.Message
}

func (s *stubLLM) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	s.calls++
	s.lastMessages = messages
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

var _ llm.Client = (*stubLLM)(nil)

func newTestService(tenants *stubTenantStore, knowledge *stubKnowledgeStore, embedder *stubEmbedder, client *stubLLM) *Service {
	return NewService(tenants, knowledge, embedder, client, log.New(io.Discard, "", 0))
}

func defaultTenantStore() *stubTenantStore {
	return &stubTenantStore{
		tenant: tenant.Tenant{ID: testTenantID, Slug: "hausarzt-painten", Name: "Hausarztpraxis Painten"},
		vars:   testVars,
	}
}

func TestAnswerNormalFlow(t *testing.T) {
	knowledge := &stubKnowledgeStore{results: []ChunkMatch{
		{ChunkID: "c1", Content: "Montag bis Freitag 08:00 bis 12:00 Uhr", Distance: 0.12},
		{ChunkID: "c2", Content: "Mittwochnachmittag geschlossen", Distance: 0.19},
		{ChunkID: "c3", Content: "Telefonische Erreichbarkeit ab 07:30 Uhr", Distance: 0.25},
	}}
	embedder := &stubEmbedder{vectors: [][]float32{{0.1, 0.2, 0.3}}}
	client := &stubLLM{answer: "Die Praxis ist vormittags geöffnet."}

	svc := newTestService(defaultTenantStore(), knowledge, embedder, client)

	reply, err := svc.Answer(context.Background(), "hausarzt-painten", "Wie sind die Öffnungszeiten?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reply.Text != "Die Praxis ist vormittags geöffnet." {
		t.Fatalf("answer text must pass through unmodified, got %q", reply.Text)
	}
	if reply.Category != guardrail.CategoryNone {
		t.Fatalf("expected CategoryNone, got %s", reply.Category)
	}

	if knowledge.calls != 1 {
		t.Fatalf("expected exactly one retrieval, got %d", knowledge.calls)
	}
	if knowledge.lastTenantID != testTenantID {
		t.Fatalf("retrieval must be scoped to the resolved tenant, got %s", knowledge.lastTenantID)
	}
	if knowledge.lastLimit != 4 {
		t.Fatalf("expected k=4, got %d", knowledge.lastLimit)
	}

	if client.calls != 1 {
		t.Fatalf("expected exactly one generation call, got %d", client.calls)
	}
	if len(client.lastMessages) != 2 {
		t.Fatalf("expected system + user message, got %d messages", len(client.lastMessages))
	}
	userTurn := client.lastMessages[1].Content
	for _, match := range knowledge.results {
		if !strings.Contains(userTurn, match.Content) {
			t.Fatalf("prompt is missing retrieved chunk %q", match.Content)
		}
	}
}

func TestAnswerEmergencyShortCircuit(t *testing.T) {
	knowledge := &stubKnowledgeStore{}
	embedder := &stubEmbedder{}
	client := &stubLLM{}

	svc := newTestService(defaultTenantStore(), knowledge, embedder, client)

	reply, err := svc.Answer(context.Background(), "hausarzt-painten", "Ich habe starke Brustschmerzen")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reply.Category != guardrail.CategoryEmergency {
		t.Fatalf("expected emergency category, got %s", reply.Category)
	}
	if !strings.Contains(reply.Text, "112") || !strings.Contains(reply.Text, "116 117") {
		t.Fatalf("emergency reply must contain the hotline numbers, got %q", reply.Text)
	}

	if embedder.calls != 0 || knowledge.calls != 0 || client.calls != 0 {
		t.Fatalf("emergency must bypass retrieval and generation (embed=%d search=%d llm=%d)",
			embedder.calls, knowledge.calls, client.calls)
	}
}

func TestAnswerMedicalAdviceShortCircuit(t *testing.T) {
	knowledge := &stubKnowledgeStore{}
	embedder := &stubEmbedder{}
	client := &stubLLM{}

	svc := newTestService(defaultTenantStore(), knowledge, embedder, client)

	reply, err := svc.Answer(context.Background(), "hausarzt-painten", "Welches Medikament soll ich nehmen?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := guardrail.MedicalAdviceMessage + " Möchten Sie eine Terminanfrage stellen?"
	if reply.Text != want {
		t.Fatalf("unexpected refusal text: %q", reply.Text)
	}
	if reply.Category != guardrail.CategoryMedicalAdvice {
		t.Fatalf("expected medical advice category, got %s", reply.Category)
	}

	if embedder.calls != 0 || knowledge.calls != 0 || client.calls != 0 {
		t.Fatalf("restricted topics must bypass retrieval and generation (embed=%d search=%d llm=%d)",
			embedder.calls, knowledge.calls, client.calls)
	}
}

func TestAnswerEmptyMessage(t *testing.T) {
	tenants := defaultTenantStore()
	knowledge := &stubKnowledgeStore{}
	embedder := &stubEmbedder{}
	client := &stubLLM{}

	svc := newTestService(tenants, knowledge, embedder, client)

	_, err := svc.Answer(context.Background(), "hausarzt-painten", "   ")
	if !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}

	if embedder.calls != 0 || knowledge.calls != 0 || client.calls != 0 {
		t.Fatal("no collaborator may be called for an empty message")
	}
}

func TestAnswerUnknownTenant(t *testing.T) {
	svc := newTestService(defaultTenantStore(), &stubKnowledgeStore{}, &stubEmbedder{}, &stubLLM{})

	_, err := svc.Answer(context.Background(), "unbekannte-praxis", "Wie sind die Öffnungszeiten?")
	if !errors.Is(err, tenant.ErrNotFound) {
		t.Fatalf("expected tenant.ErrNotFound, got %v", err)
	}
}

func TestAnswerEmptyCompletionFallback(t *testing.T) {
	knowledge := &stubKnowledgeStore{results: []ChunkMatch{{Content: "irgendein Wissen"}}}
	embedder := &stubEmbedder{vectors: [][]float32{{0.5}}}
	client := &stubLLM{err: llm.ErrEmptyCompletion}

	svc := newTestService(defaultTenantStore(), knowledge, embedder, client)

	reply, err := svc.Answer(context.Background(), "hausarzt-painten", "Wie sind die Öffnungszeiten?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Text != NoAnswerFallback {
		t.Fatalf("expected the fixed fallback text, got %q", reply.Text)
	}
}

func TestAnswerPropagatesRetrievalFailure(t *testing.T) {
	knowledge := &stubKnowledgeStore{err: errors.New("connection refused")}
	embedder := &stubEmbedder{vectors: [][]float32{{0.5}}}
	client := &stubLLM{}

	svc := newTestService(defaultTenantStore(), knowledge, embedder, client)

	_, err := svc.Answer(context.Background(), "hausarzt-painten", "Wie sind die Öffnungszeiten?")
	if err == nil {
		t.Fatal("retrieval failure must fail the request")
	}
	if client.calls != 0 {
		t.Fatal("generation must not run after a retrieval failure")
	}
}

func TestAnswerPropagatesEmbeddingFailure(t *testing.T) {
	knowledge := &stubKnowledgeStore{}
	embedder := &stubEmbedder{err: errors.New("embedding service down")}
	client := &stubLLM{}

	svc := newTestService(defaultTenantStore(), knowledge, embedder, client)

	_, err := svc.Answer(context.Background(), "hausarzt-painten", "Wie sind die Öffnungszeiten?")
	if err == nil {
		t.Fatal("embedding failure must fail the request")
	}
	if knowledge.calls != 0 || client.calls != 0 {
		t.Fatal("nothing downstream may run after an embedding failure")
	}
}
