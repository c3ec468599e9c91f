// Package ai wraps the Anthropic API for the assistant features: note
// summaries, outreach email drafts and a small chat endpoint.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
)

const summarizeSystemPrompt = "You summarize CRM notes and activity for a busy sales team. " +
	"Reply with a short plain-text summary, at most five bullet points, no preamble."

const emailSystemPrompt = "You draft professional outreach emails for a sales team. " +
	"Reply with the email body only, ready to send, no subject line unless asked."

const chatSystemPrompt = "You are a helpful assistant inside a sales CRM. " +
	"Answer questions about sales process, leads, deals and follow-ups concisely."

// Message is a single conversation turn
type Message struct {
	Role    string
	Content string
}

// Assistant calls the Anthropic messages API
type Assistant struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	logger    *zap.Logger
}

// NewAssistant creates an assistant client
func NewAssistant(apiKey, model string, maxTokens int, logger *zap.Logger) *Assistant {
	return &Assistant{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     model,
		maxTokens: int64(maxTokens),
		logger:    logger,
	}
}

func (a *Assistant) complete(ctx context.Context, system string, messages []anthropic.MessageParam) (string, error) {
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("assistant request failed: %w", err)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			out.WriteString(text.Text)
		}
	}
	return strings.TrimSpace(out.String()), nil
}

// Summarize condenses free text into a short summary
func (a *Assistant) Summarize(ctx context.Context, text string) (string, error) {
	return a.complete(ctx, summarizeSystemPrompt, []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
	})
}

// DraftEmail writes an outreach email from instructions and optional
// record context
func (a *Assistant) DraftEmail(ctx context.Context, instructions, recordContext string) (string, error) {
	prompt := instructions
	if recordContext != "" {
		prompt = fmt.Sprintf("Context:\n%s\n\nInstructions:\n%s", recordContext, instructions)
	}
	return a.complete(ctx, emailSystemPrompt, []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
	})
}

// Chat continues a conversation and returns the next assistant turn
func (a *Assistant) Chat(ctx context.Context, messages []Message) (string, error) {
	params := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == "assistant" {
			params = append(params, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
			continue
		}
		params = append(params, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
	}
	return a.complete(ctx, chatSystemPrompt, params)
}
