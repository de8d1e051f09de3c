package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/praxkit/praxis-chat/embeddings"
	"github.com/praxkit/praxis-chat/guardrail"
	"github.com/praxkit/praxis-chat/llm"
	"github.com/praxkit/praxis-chat/tenant"
)

const defaultTopK = 4

// NoAnswerFallback replaces the model output when the completion comes back
// empty. It is the only place the pipeline substitutes text for the model.
const NoAnswerFallback = "Entschuldigung, dazu habe ich gerade keine Auskunft."

// ErrEmptyMessage is returned before any collaborator is called when the
// incoming message is blank.
var ErrEmptyMessage = errors.New("message cannot be empty")

// Service runs one question through the answer pipeline: tenant resolution,
// guardrail classification, knowledge retrieval, prompt composition, and a
// single generation call. All collaborators are injected; the service holds
// no mutable state, so one instance serves concurrent requests.
type Service struct {
	tenants   tenant.Store
	knowledge KnowledgeStore
	embedder  embeddings.Embedder
	llm       llm.Client
	logger    *log.Logger
	topK      int
}

type Option func(*Service)

// WithTopK overrides the number of chunks retrieved per question.
func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

func NewService(tenants tenant.Store, knowledge KnowledgeStore, embedder embeddings.Embedder, llmClient llm.Client, logger *log.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = log.Default()
	}

	s := &Service{
		tenants:   tenants,
		knowledge: knowledge,
		embedder:  embedder,
		llm:       llmClient,
		logger:    logger,
		topK:      defaultTopK,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Answer resolves the tenant behind slug and answers message. Guardrail
// categories terminate before retrieval or generation; any collaborator
// failure aborts the request without a partial answer.
func (s *Service) Answer(ctx context.Context, slug, message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, ErrEmptyMessage
	}
	if slug == "" {
		return Reply{}, fmt.Errorf("tenant slug cannot be empty")
	}

	t, err := s.tenants.TenantBySlug(ctx, slug)
	if err != nil {
		return Reply{}, fmt.Errorf("resolve tenant: %w", err)
	}
	vars, err := s.tenants.Variables(ctx, t.ID)
	if err != nil {
		return Reply{}, fmt.Errorf("load tenant variables: %w", err)
	}

	if category := guardrail.Classify(message); category != guardrail.CategoryNone {
		s.logger.Printf("guardrail short-circuit (%s) for tenant %s", category, t.Slug)
		return Reply{Text: guardrail.Reply(category), Category: category}, nil
	}

	queryVec, err := embeddings.EmbedOne(ctx, s.embedder, message)
	if err != nil {
		return Reply{}, fmt.Errorf("embed question: %w", err)
	}

	matches, err := s.knowledge.SimilarChunks(ctx, t.ID, queryVec, s.topK)
	if err != nil {
		return Reply{}, fmt.Errorf("knowledge search: %w", err)
	}

	prompt := ComposePrompt(vars, matches, message)
	answer, err := s.llm.Generate(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: prompt.SystemText},
		{Role: llm.RoleUser, Content: prompt.UserText},
	})
	if errors.Is(err, llm.ErrEmptyCompletion) {
		s.logger.Printf("empty completion for tenant %s, using fallback text", t.Slug)
		return Reply{Text: NoAnswerFallback}, nil
	}
	if err != nil {
		return Reply{}, fmt.Errorf("llm generate: %w", err)
	}

	return Reply{Text: answer}, nil
}
