package entity

import (
	"encoding/json"
	"strings"
)

// Roles conocidos en el dataset. El campo rol es texto libre; solo admin tiene permisos de escritura.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "Supervisor"
	RoleNormal     = "Normal"
)

// User representa un usuario de la aplicación tal como vive dentro de AppData.
// Los campos desconocidos del documento de origen se conservan en Extra.
type User struct {
	ID           string         `json:"id"`
	Nombre       string         `json:"nombre"`
	Clave        string         `json:"clave,omitempty"` // texto plano o hash bcrypt
	Zona         string         `json:"zona"`
	Grupo        string         `json:"grupo"`
	Departamento string         `json:"departamento"`
	Rol          string         `json:"rol"`
	VerPVP       bool           `json:"verPVP"` // puede ver el precio de venta al público
	Extra        map[string]any `json:"-"`
}

// IsAdmin informa si el rol del usuario es admin (sin distinguir mayúsculas).
func (u User) IsAdmin() bool {
	return strings.EqualFold(strings.TrimSpace(u.Rol), RoleAdmin)
}

// Redacted devuelve una copia sin la clave.
func (u User) Redacted() User {
	u.Clave = ""
	return u
}

var userKnownKeys = []string{"id", "nombre", "clave", "zona", "grupo", "departamento", "rol", "verPVP"}

type userAlias User

// MarshalJSON serializa los campos conocidos y vuelve a mezclar los campos extra.
func (u User) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(userAlias(u), u.Extra)
}

// UnmarshalJSON lee los campos conocidos y guarda el resto en Extra.
func (u *User) UnmarshalJSON(b []byte) error {
	var a userAlias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	extra, err := extraFields(b, userKnownKeys)
	if err != nil {
		return err
	}
	a.Extra = extra
	*u = User(a)
	return nil
}
