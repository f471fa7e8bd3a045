package repository

import "context"

// Clave lógica bajo la que se guarda el dataset completo en la caché local.
const AppDataKey = "appData"

// LocalCache define el puerto de la caché clave-valor persistente en el dispositivo.
// Es una capa de optimización, no la fuente de verdad: los llamadores tratan sus
// errores como "sin datos" en lectura.
type LocalCache interface {
	// Get devuelve el valor guardado; found es false si la clave no existe.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Put guarda (o reemplaza) el valor de la clave.
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}
