// Package ai contiene los adaptadores de ports.ChatProvider.
package ai

import (
	"github.com/jhoicas/consulta-tarifas/internal/application/ports"
	"github.com/jhoicas/consulta-tarifas/pkg/config"
)

// NewChatProvider elige el adaptador según AI_PROVIDER.
func NewChatProvider(cfg config.AIConfig) ports.ChatProvider {
	if cfg.Provider == config.AIProviderAnthropic {
		return NewAnthropicChat(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	}
	return NewGeminiChat(cfg.GeminiAPIKey, cfg.GeminiModel)
}
