package auth

import (
	"context"
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/consulta-tarifas/internal/application/dto"
	"github.com/jhoicas/consulta-tarifas/internal/domain"
	"github.com/jhoicas/consulta-tarifas/internal/domain/entity"
	"github.com/jhoicas/consulta-tarifas/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AppDataReader fuente del dataset donde viven los usuarios (el sincronizador).
type AppDataReader interface {
	GetAppData(ctx context.Context) (entity.AppData, error)
}

// AuthUseCase login contra los usuarios guardados en el dataset.
type AuthUseCase struct {
	data   AppDataReader
	jwtCfg JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(data AppDataReader, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{data: data, jwtCfg: jwtCfg}
}

// Login busca el usuario por nombre (sin distinguir mayúsculas), verifica la clave,
// genera el JWT con sus flags de rol y retorna token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	nombre := strings.TrimSpace(in.Nombre)
	if nombre == "" || in.Clave == "" {
		return nil, domain.ErrInvalidInput
	}
	data, err := uc.data.GetAppData(ctx)
	if err != nil {
		return nil, err
	}

	var user *entity.User
	for i := range data.Users {
		if strings.EqualFold(data.Users[i].Nombre, nombre) {
			user = &data.Users[i]
			break
		}
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if !checkClave(user.Clave, in.Clave) {
		return nil, domain.ErrUnauthorized
	}

	token, err := jwt.Generate(uc.jwtCfg.Secret, jwt.Identity{
		UserID: user.ID,
		Name:   user.Nombre,
		Role:   user.Rol,
		VerPVP: user.VerPVP,
	}, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  ToUserResponse(*user),
	}, nil
}

// checkClave admite claves guardadas como hash bcrypt o en texto plano.
func checkClave(stored, given string) bool {
	if stored == "" {
		return false
	}
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

// ToUserResponse convierte un usuario del dataset en su representación pública.
func ToUserResponse(u entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:           u.ID,
		Nombre:       u.Nombre,
		Zona:         u.Zona,
		Grupo:        u.Grupo,
		Departamento: u.Departamento,
		Rol:          u.Rol,
		VerPVP:       u.VerPVP,
	}
}
