package ai

import (
	"log/slog"

	"github.com/fra-atlas/atlas-backend/internal/config"
)

// NewFromConfig builds the provider chain: Gemini first, then GLM vision,
// DeepSeek and OpenAI. Providers without a key are skipped.
func NewFromConfig(cfg *config.Config) Analyzer {
	var chain Chain

	if cfg.GeminiAPIKey != "" {
		g, err := NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL)
		if err != nil {
			slog.Error("gemini client init failed", "error", err)
		} else {
			chain = append(chain, g)
		}
	}
	if cfg.GLMAPIKey != "" {
		chain = append(chain, NewChatClient(cfg.GLMAPIURL, cfg.GLMAPIKey, cfg.GLMVisionModel, true))
	}
	if cfg.DeepSeekAPIKey != "" {
		chain = append(chain, NewChatClient(cfg.DeepSeekAPIURL, cfg.DeepSeekAPIKey, cfg.DeepSeekModel, false))
	}
	if cfg.OpenAIAPIKey != "" {
		chain = append(chain, NewChatClient(cfg.OpenAIAPIURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, true))
	}

	if len(chain) == 0 {
		slog.Warn("no AI provider configured, analysis and insights will be degraded")
		return Disabled{}
	}
	slog.Info("AI providers configured", "count", len(chain))
	return chain
}
