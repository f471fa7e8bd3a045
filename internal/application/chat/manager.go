// Package chat mantiene la única conversación activa con el asistente de IA, ligada a
// una instantánea textual de los datos que el usuario está viendo.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/consulta-tarifas/internal/application/ports"
	"github.com/jhoicas/consulta-tarifas/internal/domain"
	"github.com/jhoicas/consulta-tarifas/internal/domain/entity"
	"github.com/jhoicas/consulta-tarifas/pkg/logger"
)

// Respuestas mostradas al usuario cuando la IA falla.
const (
	FallbackAuth       = "Error de autenticación con la IA. Verifica la API Key."
	FallbackEmpty      = "No he recibido una respuesta válida. Por favor, inténtalo de nuevo."
	FallbackConnection = "Lo siento, ha ocurrido un error de conexión con la IA. Por favor, inténtalo de nuevo en unos segundos."

	// WelcomeText saludo con el que se abre el chat.
	WelcomeText = "¡Hola! Soy tu asistente de Consulta de Tarifas. Puedo ayudarte con precios, artículos y cualquier otra duda. ¿En qué puedo ayudarte?"

	noContextText = "El usuario no está visualizando datos específicos ahora mismo."

	defaultTemperature = 0.7
	defaultTimeout     = 30 * time.Second
)

const systemInstructionTemplate = `Eres el asistente de inteligencia artificial integrado en la aplicación corporativa "Consulta de Tarifas".

TU COMPORTAMIENTO DEBE SER:
1. Idioma: DEBES RESPONDER SIEMPRE EN ESPAÑOL, sin importar el idioma en el que te hablen, con un español claro y profesional.
2. Versátil: puedes responder a cualquier pregunta, ya sea sobre la aplicación, sobre los datos que ves o sobre temas generales.
3. Analítico: a continuación se te proporciona el CONTEXTO DE DATOS ACTUAL. Si contiene información, úsala para responder sobre precios, productos o estadísticas. Si está vacío, actúa como un chat normal.
4. Profesional y conciso: tus respuestas deben ser útiles y directas.

CONTEXTO DE DATOS ACTUAL (lo que ve el usuario):
%s

EJEMPLOS DE INTERACCIÓN:
- Usuario: "¿Qué precio tiene el jamón?" -> buscas en el contexto y respondes en español.
- Usuario: "Write an email for employees." -> redactas el correo en español.
- Usuario: "Hola, ¿qué puedes hacer?" -> te presentas en español.`

// Config parámetros del gestor.
type Config struct {
	Temperature float32       // 0 → 0.7
	Timeout     time.Duration // límite por turno; 0 → 30 s
}

// Manager gestiona la sesión de chat del proceso. Solo hay una conversación activa:
// iniciar otra descarta el historial de la anterior.
type Manager struct {
	provider ports.ChatProvider
	cfg      Config
	log      *logger.Logger
	now      func() time.Time

	mu      sync.Mutex
	session ports.ChatSession
}

// NewManager construye el gestor. provider puede ser nil: el chat responde con el
// mensaje de error de conexión.
func NewManager(provider ports.ChatProvider, cfg Config, log *logger.Logger) *Manager {
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{provider: provider, cfg: cfg, log: log.Named("chat"), now: time.Now}
}

// SystemInstruction arma la instrucción de sistema con la instantánea de contexto.
func SystemInstruction(contextText string) string {
	if strings.TrimSpace(contextText) == "" {
		contextText = noContextText
	}
	return fmt.Sprintf(systemInstructionTemplate, contextText)
}

// StartNewChat reemplaza la sesión activa por una nueva configurada con contextText.
// Si falla, no queda ninguna sesión activa.
func (m *Manager) StartNewChat(ctx context.Context, contextText string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := m.startLocked(ctx, contextText)
	return err
}

func (m *Manager) startLocked(ctx context.Context, contextText string) (ports.ChatSession, error) {
	m.session = nil
	if m.provider == nil {
		return nil, domain.ErrChatUnavailable
	}
	s, err := m.provider.NewSession(ctx, ports.SessionConfig{
		SystemInstruction: SystemInstruction(contextText),
		Temperature:       m.cfg.Temperature,
	})
	if err != nil {
		m.log.Error().Err(err).Msg("error al iniciar sesión de chat")
		return nil, fmt.Errorf("iniciar chat: %w", err)
	}
	m.session = s
	m.log.Info().Bool("con_contexto", strings.TrimSpace(contextText) != "").Msg("sesión de chat inicializada")
	return s, nil
}

// GetBotResponse envía un turno a la sesión activa (creándola sin contexto si no
// existe) y devuelve la respuesta. Nunca devuelve error: los fallos se traducen a un
// texto para el usuario y la sesión se descarta.
func (m *Manager) GetBotResponse(ctx context.Context, text string) string {
	m.mu.Lock()
	session := m.session
	if session == nil {
		var err error
		session, err = m.startLocked(ctx, "")
		if err != nil {
			m.mu.Unlock()
			return fallbackFor(err)
		}
	}
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	reply, err := session.Send(ctx, text)
	if err != nil {
		m.log.Error().Err(err).Msg("error al comunicarse con la IA")
		m.discard(session)
		return fallbackFor(err)
	}
	if strings.TrimSpace(reply) == "" {
		return FallbackEmpty
	}
	return reply
}

// Converse envuelve un turno en los dos mensajes de la conversación.
func (m *Manager) Converse(ctx context.Context, text string) (user, bot entity.Message) {
	user = entity.Message{
		ID:        "user-" + uuid.NewString(),
		Text:      text,
		Sender:    entity.SenderUser,
		Timestamp: m.now().UnixMilli(),
	}
	reply := m.GetBotResponse(ctx, text)
	bot = entity.Message{
		ID:        "bot-" + uuid.NewString(),
		Text:      reply,
		Sender:    entity.SenderBot,
		Timestamp: m.now().UnixMilli(),
	}
	return user, bot
}

// WelcomeMessage mensaje inicial del bot al abrir el chat.
func (m *Manager) WelcomeMessage() entity.Message {
	return entity.Message{
		ID:        "initial-bot-message",
		Text:      WelcomeText,
		Sender:    entity.SenderBot,
		Timestamp: m.now().UnixMilli(),
	}
}

// discard descarta la sesión solo si sigue siendo la activa; otra petición pudo
// haberla reemplazado mientras tanto.
func (m *Manager) discard(s ports.ChatSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == s {
		m.session = nil
	}
}

func fallbackFor(err error) string {
	if err == nil {
		return FallbackEmpty
	}
	if strings.Contains(strings.ToLower(err.Error()), "api key") {
		return FallbackAuth
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		return FallbackAuth
	}
	return FallbackConnection
}
