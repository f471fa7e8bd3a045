package dto

import "time"

// SaveDataResponse resultado de un guardado: la fase local ya está confirmada.
type SaveDataResponse struct {
	LastUpdated string `json:"last_updated"`
	Remote      string `json:"remote"` // skipped | pending | synced | failed
}

// SyncStatusResponse estado del sincronizador.
type SyncStatusResponse struct {
	Source      string     `json:"source"`
	Remote      string     `json:"remote"`
	RemoteError string     `json:"remote_error,omitempty"`
	RemoteAt    *time.Time `json:"remote_at,omitempty"`
	LastUpdated string     `json:"last_updated"`
}
