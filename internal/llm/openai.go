package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/mirrorhours/mirror-api/internal/apperrors"
	"github.com/mirrorhours/mirror-api/internal/config"
)

const systemPrompt = "You are a spiritual guide specializing in interpreting mirror hours and numerical synchronicities. Your analysis should be mystical, thoughtful, and personal."

const (
	maxTokens   = 300
	temperature = 0.8
)

// Interpreter proxies time/message pairs to the completion provider.
// Each call is a single best-effort attempt; no retry or caching.
type Interpreter struct {
	client *openai.Client
	model  string
	apiKey string
	log    *logrus.Logger
}

// NewInterpreter initializes the provider client from configuration.
// OpenAIBaseURL overrides the endpoint, which tests use to point the
// client at a local server.
func NewInterpreter(cfg *config.Config, log *logrus.Logger) *Interpreter {
	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}
	return &Interpreter{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.OpenAIModel,
		apiKey: cfg.OpenAIAPIKey,
		log:    log,
	}
}

// Analyze builds the language-appropriate prompt and returns the
// provider's trimmed response. The credential check happens before any
// network call.
func (i *Interpreter) Analyze(ctx context.Context, timeStr, message, language string) (string, error) {
	if timeStr == "" {
		return "", apperrors.Validation("Missing required field: time")
	}
	if i.apiKey == "" {
		i.log.Error("OPENAI_API_KEY not set in environment")
		return "", apperrors.Config("OpenAI API key not configured. Please contact administrator.")
	}

	prompt := BuildPrompt(timeStr, message, language)

	resp, err := i.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: i.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			i.log.Errorf("OpenAI API error: %v", err)
			return "", apperrors.Upstream("Failed to get analysis from OpenAI due to API error.", err)
		}
		i.log.Errorf("Error during OpenAI API call: %v", err)
		return "", apperrors.Internal("Failed to get analysis from OpenAI.", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.Internal("Failed to get analysis from OpenAI.", errors.New("empty completion"))
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
