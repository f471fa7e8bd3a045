package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/jhoicas/consulta-tarifas/internal/application/ports"
)

var _ ports.ChatProvider = (*AnthropicChat)(nil)

// ErrNoAnthropicKey la clave de Anthropic no está configurada.
var ErrNoAnthropicKey = errors.New("AI: API key de Anthropic no configurada")

const anthropicMaxTokens = 1024

// AnthropicChat adaptador de ChatProvider sobre la API Messages de Anthropic.
// La API no guarda estado: el historial vive en la sesión y se reenvía en cada turno.
type AnthropicChat struct {
	apiKey string
	model  string
	opts   []option.RequestOption
}

// NewAnthropicChat construye el adaptador. opts permite cambiar la URL base en pruebas.
func NewAnthropicChat(apiKey, model string, opts ...option.RequestOption) *AnthropicChat {
	if model == "" {
		model = "claude-3-5-haiku-20241022"
	}
	return &AnthropicChat{apiKey: apiKey, model: model, opts: opts}
}

// NewSession abre una conversación vacía con la instrucción de sistema dada.
func (a *AnthropicChat) NewSession(_ context.Context, cfg ports.SessionConfig) (ports.ChatSession, error) {
	if strings.TrimSpace(a.apiKey) == "" {
		return nil, ErrNoAnthropicKey
	}
	opts := append([]option.RequestOption{option.WithAPIKey(a.apiKey)}, a.opts...)
	return &anthropicSession{
		client:      anthropic.NewClient(opts...),
		model:       a.model,
		system:      cfg.SystemInstruction,
		temperature: float64(cfg.Temperature),
	}, nil
}

type anthropicSession struct {
	client      anthropic.Client
	model       string
	system      string
	temperature float64

	mu      sync.Mutex
	history []anthropic.MessageParam
}

// Send agrega el turno al historial solo si la API respondió.
func (s *anthropicSession) Send(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userMsg := anthropic.NewUserMessage(anthropic.NewTextBlock(text))
	messages := append(append([]anthropic.MessageParam(nil), s.history...), userMsg)

	msg, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(s.model),
		MaxTokens:   anthropicMaxTokens,
		System:      []anthropic.TextBlockParam{{Text: s.system}},
		Messages:    messages,
		Temperature: anthropic.Float(s.temperature),
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("AI: timeout o cancelación: %w", ctx.Err())
		}
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return "", fmt.Errorf("AI: API key de Anthropic rechazada: %w", err)
		}
		return "", fmt.Errorf("AI: enviar mensaje: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	s.history = append(messages, msg.ToParam())
	return sb.String(), nil
}
