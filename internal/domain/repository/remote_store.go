package repository

import "context"

// Colecciones del almacén remoto que se leen al cargar.
const (
	CollectionUsers     = "users"
	CollectionPos       = "pos"
	CollectionArticulos = "articulos"
	CollectionTarifas   = "tarifas"
	CollectionGroups    = "groups"
)

// Documento singleton con los campos agregados (empresa, familias, informes, copias).
const (
	MainCollection = "appData"
	MainDocumentID = "main"
)

// RemoteDocument documento de una colección remota.
type RemoteDocument struct {
	ID   string
	Data map[string]any
}

// RemoteStore define el puerto del almacén de documentos en la nube (DIP).
// La implementación vive en infrastructure.
type RemoteStore interface {
	// FetchCollection devuelve todos los documentos de la colección.
	FetchCollection(ctx context.Context, collection string) ([]RemoteDocument, error)
	// FetchMain devuelve los campos del documento singleton; exists es false si no existe.
	FetchMain(ctx context.Context) (data map[string]any, exists bool, err error)
	// SaveMain sobrescribe el documento singleton completo. El almacén añade la marca de tiempo del servidor.
	SaveMain(ctx context.Context, data map[string]any) error
}
