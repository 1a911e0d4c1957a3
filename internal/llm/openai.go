package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/config"
)

const systemPrompt = "You are an assistant for IT support agents. Follow the output format in each request exactly."

// OpenAIClient implements Client against the OpenAI chat completion API (or
// any compatible endpoint via base_url, e.g. a local server).
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIClient builds a client from config. The API key comes from the
// environment variable named in cfg; a missing key is a configuration error
// and fails construction.
func NewOpenAIClient(cfg config.LLMConfig, logger *zap.Logger) (*OpenAIClient, error) {
	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("language model not configured: %s is not set", cfg.APIKeyEnv)
	}
	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	logger.Info("initializing language model client",
		zap.String("model", cfg.Model), zap.String("base_url", cfg.BaseURL))
	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: logger,
	}, nil
}

// Generate sends one prompt and returns the raw reply text.
func (o *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("language model call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("language model returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
