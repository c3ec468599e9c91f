package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/saqrcrm/sales-api/internal/ai"
	"github.com/saqrcrm/sales-api/internal/domain"
)

// AssistantService exposes the AI helper endpoints. When no API key is
// configured the assistant is nil and every call reports the feature as
// disabled.
type AssistantService struct {
	assistant *ai.Assistant
	logger    *zap.Logger
}

// NewAssistantService creates an assistant service. assistant may be nil.
func NewAssistantService(assistant *ai.Assistant, logger *zap.Logger) *AssistantService {
	return &AssistantService{assistant: assistant, logger: logger}
}

// Enabled reports whether assistant features are available
func (s *AssistantService) Enabled() bool {
	return s.assistant != nil
}

// Summarize condenses free text
func (s *AssistantService) Summarize(ctx context.Context, req *domain.SummarizeRequest) (string, error) {
	if s.assistant == nil {
		return "", ErrAssistantDisabled
	}
	summary, err := s.assistant.Summarize(ctx, req.Text)
	if err != nil {
		return "", fmt.Errorf("failed to summarize: %w", err)
	}
	return summary, nil
}

// DraftEmail writes an outreach email
func (s *AssistantService) DraftEmail(ctx context.Context, req *domain.DraftEmailRequest) (string, error) {
	if s.assistant == nil {
		return "", ErrAssistantDisabled
	}
	draft, err := s.assistant.DraftEmail(ctx, req.Instructions, req.Context)
	if err != nil {
		return "", fmt.Errorf("failed to draft email: %w", err)
	}
	return draft, nil
}

// Chat continues an assistant conversation
func (s *AssistantService) Chat(ctx context.Context, req *domain.ChatRequest) (string, error) {
	if s.assistant == nil {
		return "", ErrAssistantDisabled
	}
	messages := make([]ai.Message, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, ai.Message{Role: msg.Role, Content: msg.Content})
	}
	reply, err := s.assistant.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to chat: %w", err)
	}
	return reply, nil
}
