package datasync

import (
	"context"
	"time"
)

// Source origen del dataset cargado.
type Source string

const (
	SourceNone  Source = ""
	SourceCloud Source = "cloud"
	SourceCache Source = "cache"
	SourceDemo  Source = "demo"
)

// RemoteState resultado de la fase 2 (subida a la nube) del último guardado.
type RemoteState string

const (
	RemoteIdle       RemoteState = "idle"       // aún no se ha guardado nada
	RemoteSkipped    RemoteState = "skipped"    // almacén remoto no configurado
	RemotePending    RemoteState = "pending"    // subida en curso
	RemoteSynced     RemoteState = "synced"     // subida confirmada
	RemoteFailed     RemoteState = "failed"     // la subida falló; los datos solo están en local
	RemoteSuperseded RemoteState = "superseded" // un guardado posterior la reemplazó antes de subirla
)

// SyncStatus estado observable del sincronizador.
type SyncStatus struct {
	Source      Source      `json:"source"`
	Remote      RemoteState `json:"remote"`
	RemoteError string      `json:"remote_error,omitempty"`
	RemoteAt    *time.Time  `json:"remote_at,omitempty"`
	LastUpdated string      `json:"last_updated"`
}

// RemoteWrite resultado asíncrono de la fase 2 de un guardado.
type RemoteWrite struct {
	done  chan struct{}
	state RemoteState
	err   error
}

func newRemoteWrite() *RemoteWrite {
	return &RemoteWrite{done: make(chan struct{}), state: RemotePending}
}

func (w *RemoteWrite) finish(state RemoteState, err error) {
	w.state = state
	w.err = err
	close(w.done)
}

// Done se cierra cuando la fase 2 termina (con éxito, error u omitida).
func (w *RemoteWrite) Done() <-chan struct{} {
	return w.done
}

// Wait espera el final de la fase 2 y devuelve su error (nil si se sincronizó, se omitió o fue reemplazada).
func (w *RemoteWrite) Wait(ctx context.Context) error {
	select {
	case <-w.done:
		return w.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State devuelve el estado de la fase 2; RemotePending mientras no haya terminado.
func (w *RemoteWrite) State() RemoteState {
	select {
	case <-w.done:
		return w.state
	default:
		return RemotePending
	}
}
