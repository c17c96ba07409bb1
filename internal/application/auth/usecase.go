package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/application/usecase"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/domain/repository"
	"github.com/jhoicas/Ventas-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: alta de operadores y login.
type AuthUseCase struct {
	userRepo repository.UserRepository
	jwtCfg   JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg}
}

// RegisterUser crea un operador: hashea el password con bcrypt y persiste.
// ErrUsernameTaken si el nombre de usuario ya existe.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUsernameTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	name := in.Name
	if name == "" {
		name = username
	}
	role := in.Role
	if role == "" {
		role = entity.RoleOperator
	}
	if role != entity.RoleAdmin && role != entity.RoleOperator {
		return nil, domain.ErrInvalidInput
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return usecase.ToUserResponse(user), nil
}

// EnsureAdmin crea el administrador si el nombre de usuario está libre.
// Devuelve false sin error cuando ya existía.
func (uc *AuthUseCase) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := uc.RegisterUser(ctx, dto.CreateUserRequest{Username: username, Password: password, Role: entity.RoleAdmin})
	if errors.Is(err, domain.ErrUsernameTaken) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Login verifica usuario/password y abre una sesión nueva: cada token lleva su propio id de sesión,
// que agrupa las ventas pendientes de confirmación del operador.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != entity.UserStatusActive {
		return nil, domain.ErrForbidden
	}
	session := jwt.Session{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		SessionID: uuid.New().String(),
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, session, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(time.Duration(uc.jwtCfg.ExpMinutes) * time.Minute),
		User:      *usecase.ToUserResponse(user),
	}, nil
}
