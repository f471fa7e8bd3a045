package dto

// LoginRequest entrada para login: nombre y clave tal como figuran en el dataset.
type LoginRequest struct {
	Nombre string `json:"nombre" validate:"required"`
	Clave  string `json:"clave" validate:"required"`
}

// UserResponse salida de un usuario (sin clave).
type UserResponse struct {
	ID           string `json:"id"`
	Nombre       string `json:"nombre"`
	Zona         string `json:"zona"`
	Grupo        string `json:"grupo"`
	Departamento string `json:"departamento"`
	Rol          string `json:"rol"`
	VerPVP       bool   `json:"verPVP"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
