package generativeAI

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/FACorreiaa/go-trip-planner/config"
	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

var _ Client = (*AIClient)(nil)

// Client is the chat-completion contract the pipeline consumes. Any
// non-success from the remote model is opaque to callers (network/auth);
// interpretation of the returned text is the caller's job.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, creds *config.Credentials) (string, error)
}

// AIClient wraps the Gemini API. A fresh SDK client is built per call so that
// per-call credential overrides (key and endpoint) are honored without any
// shared state between requests.
type AIClient struct {
	model       string
	temperature float32
	keys        *config.KeyResolver
	logger      *slog.Logger
}

func NewAIClient(cfg *config.Config, keys *config.KeyResolver, logger *slog.Logger) *AIClient {
	model := cfg.LLM.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	temperature := float32(cfg.LLM.Temperature)
	if temperature == 0 {
		temperature = 0.7
	}
	return &AIClient{
		model:       model,
		temperature: temperature,
		keys:        keys,
		logger:      logger,
	}
}

func (ai *AIClient) Complete(ctx context.Context, systemPrompt, userPrompt string, creds *config.Credentials) (string, error) {
	apiKey := ai.keys.LLMAPIKey(creds)
	if apiKey == "" {
		return "", fmt.Errorf("%w: %s", types.ErrMissingAPIKey, config.EnvGeminiAPIKey)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL := ai.keys.LLMBaseURL(creds); baseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create client: %v", types.ErrGenerationFailed, err)
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](ai.temperature),
	}
	if systemPrompt != "" {
		genConfig.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		}
	}

	result, err := client.Models.GenerateContent(ctx, ai.model, genai.Text(userPrompt), genConfig)
	if err != nil {
		ai.logger.ErrorContext(ctx, "Gemini call failed", slog.String("model", ai.model), slog.Any("error", err))
		return "", fmt.Errorf("%w: %v", types.ErrGenerationFailed, err)
	}
	return result.Text(), nil
}
