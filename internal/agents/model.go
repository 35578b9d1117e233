package agents

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/deepagent/deepagent/internal/config"
)

// NewChatModel builds the chat model for a tier according to the configured
// provider.
func NewChatModel(ctx context.Context, cfg *config.Config, tier string) (model.ToolCallingChatModel, error) {
	settings := cfg.ModelSettings(tier)

	switch cfg.LLMProvider {
	case "deepseek":
		name := "deepseek-chat"
		if tier == "reasoning" {
			name = "deepseek-reasoner"
		}
		return deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:      cfg.DeepSeekAPIKey,
			Model:       name,
			MaxTokens:   settings.MaxTokens,
			Temperature: settings.Temperature,
		})
	case "openai", "":
		maxTokens := settings.MaxTokens
		temperature := settings.Temperature
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:     cfg.OpenAIBaseURL,
			APIKey:      cfg.OpenAIAPIKey,
			Model:       settings.Model,
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
		})
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}
