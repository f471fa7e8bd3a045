package ai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/consulta-tarifas/internal/application/chat"
	"github.com/jhoicas/consulta-tarifas/internal/application/ports"
	"github.com/jhoicas/consulta-tarifas/internal/infrastructure/ai"
	"github.com/jhoicas/consulta-tarifas/pkg/config"
)

// ──────────────────────────────────────────────────────────────────────────────
// Servidor falso de la API Messages
// ──────────────────────────────────────────────────────────────────────────────

type messagesServer struct {
	mu       sync.Mutex
	status   int
	requests []map[string]any
}

func (s *messagesServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	s.requests = append(s.requests, body)
	n := len(s.requests)
	status := s.status
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":            "msg_test",
		"type":          "message",
		"role":          "assistant",
		"model":         "claude-test",
		"stop_reason":   "end_turn",
		"stop_sequence": nil,
		"content":       []map[string]any{{"type": "text", "text": "respuesta " + strings.Repeat("I", n)}},
		"usage":         map[string]any{"input_tokens": 10, "output_tokens": 5},
	})
}

func newAnthropicTest(t *testing.T, srv *messagesServer) *ai.AnthropicChat {
	t.Helper()
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ai.NewAnthropicChat("sk-test", "claude-test",
		option.WithBaseURL(ts.URL),
		option.WithMaxRetries(0),
	)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestAnthropicChat_SinAPIKey(t *testing.T) {
	a := ai.NewAnthropicChat("", "")

	_, err := a.NewSession(context.Background(), ports.SessionConfig{SystemInstruction: "x"})
	require.ErrorIs(t, err, ai.ErrNoAnthropicKey)
	assert.Contains(t, err.Error(), "API key")
}

func TestAnthropicChat_ConservaHistorialEntreTurnos(t *testing.T) {
	srv := &messagesServer{}
	a := newAnthropicTest(t, srv)

	s, err := a.NewSession(context.Background(), ports.SessionConfig{SystemInstruction: "Eres un asistente", Temperature: 0.4})
	require.NoError(t, err)

	r1, err := s.Send(context.Background(), "hola")
	require.NoError(t, err)
	assert.Equal(t, "respuesta I", r1)

	r2, err := s.Send(context.Background(), "¿y el pollo?")
	require.NoError(t, err)
	assert.Equal(t, "respuesta II", r2)

	require.Len(t, srv.requests, 2)
	assert.Equal(t, "claude-test", srv.requests[1]["model"])
	assert.InDelta(t, 0.4, srv.requests[1]["temperature"], 0.0001)
	msgs, ok := srv.requests[1]["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 3, "usuario, asistente, usuario")

	system, ok := srv.requests[0]["system"].([]any)
	require.True(t, ok)
	require.Len(t, system, 1)
	assert.Equal(t, "Eres un asistente", system[0].(map[string]any)["text"])
}

func TestAnthropicChat_ClaveRechazada_ElChatDevuelveErrorDeAutenticacion(t *testing.T) {
	srv := &messagesServer{status: http.StatusUnauthorized}
	m := chat.NewManager(newAnthropicTest(t, srv), chat.Config{}, nil)

	assert.Equal(t, chat.FallbackAuth, m.GetBotResponse(context.Background(), "hola"))
}

func TestNewChatProvider_EligeAdaptador(t *testing.T) {
	_, isAnthropic := ai.NewChatProvider(config.AIConfig{Provider: config.AIProviderAnthropic}).(*ai.AnthropicChat)
	assert.True(t, isAnthropic)

	_, isGemini := ai.NewChatProvider(config.AIConfig{Provider: config.AIProviderGemini}).(*ai.GeminiChat)
	assert.True(t, isGemini)
}
