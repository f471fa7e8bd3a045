package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"github.com/jhoicas/consulta-tarifas/internal/application/ports"
)

// Verificar en tiempo de compilación que GeminiChat implementa ChatProvider.
var _ ports.ChatProvider = (*GeminiChat)(nil)

// ErrNoAPIKey la clave de Gemini no está configurada.
var ErrNoAPIKey = errors.New("AI: API key de Gemini no configurada")

// GeminiChat adaptador de ChatProvider sobre el SDK google.golang.org/genai.
// El cliente se crea en la primera sesión y se reutiliza.
type GeminiChat struct {
	apiKey string
	model  string

	mu     sync.Mutex
	client *genai.Client
}

// NewGeminiChat construye el adaptador. model suele ser "gemini-2.5-flash".
// Si apiKey está vacío, NewSession devuelve ErrNoAPIKey en lugar de fallar al arrancar.
func NewGeminiChat(apiKey, model string) *GeminiChat {
	return &GeminiChat{apiKey: apiKey, model: model}
}

func (g *GeminiChat) getClient(ctx context.Context) (*genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}
	if g.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("AI: crear cliente Gemini: %w", err)
	}
	g.client = client
	return client, nil
}

// NewSession abre un chat con la instrucción de sistema y la temperatura dadas.
func (g *GeminiChat) NewSession(ctx context.Context, cfg ports.SessionConfig) (ports.ChatSession, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return nil, err
	}
	chat, err := client.Chats.Create(ctx, g.model, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(cfg.SystemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr(cfg.Temperature),
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("AI: crear chat: %w", err)
	}
	return &geminiSession{chat: chat}, nil
}

// geminiSession serializa los turnos: el historial del chat no admite envíos concurrentes.
type geminiSession struct {
	mu   sync.Mutex
	chat *genai.Chat
}

func (s *geminiSession) Send(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp, err := s.chat.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("AI: timeout o cancelación: %w", ctx.Err())
		}
		return "", fmt.Errorf("AI: enviar mensaje: %w", err)
	}
	if resp == nil {
		return "", nil
	}
	return resp.Text(), nil
}
