package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrUserNotFound        = errors.New("usuario no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrRemoteNotConfigured = errors.New("almacén remoto no configurado")
	ErrLocalPersist        = errors.New("no se pudo guardar en la caché local")
	ErrChatUnavailable     = errors.New("asistente de chat no disponible")
)
