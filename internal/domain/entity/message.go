package entity

// Emisores de un mensaje de chat.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Message es un turno de la conversación. Inmutable una vez creado; la conversación
// vive en el cliente y no se persiste.
type Message struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Sender    string `json:"sender"`    // user | bot
	Timestamp int64  `json:"timestamp"` // epoch en milisegundos
}
