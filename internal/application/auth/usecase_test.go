package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Ventas-api/internal/application/auth"
	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/memory"
)

func newAuth() (*auth.AuthUseCase, *memory.UserRepo) {
	users := memory.NewUserRepository(memory.NewStore())
	return auth.NewAuthUseCase(users, auth.JWTConfig{Secret: "secreto-de-prueba", ExpMinutes: 60, Issuer: "ventas-test"}), users
}

func TestEnsureAdmin_CreaAdministradorQuePuedeIniciarSesion(t *testing.T) {
	ctx := context.Background()
	uc, users := newAuth()

	created, err := uc.EnsureAdmin(ctx, "admin", "admin-pass-123")
	require.NoError(t, err)
	assert.True(t, created)

	u, err := users.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, entity.RoleAdmin, u.Role)

	res, err := uc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "admin-pass-123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, entity.RoleAdmin, res.User.Role)
}

func TestEnsureAdmin_EsIdempotente(t *testing.T) {
	ctx := context.Background()
	uc, _ := newAuth()

	_, err := uc.EnsureAdmin(ctx, "admin", "admin-pass-123")
	require.NoError(t, err)

	created, err := uc.EnsureAdmin(ctx, "admin", "otra-clave")
	require.NoError(t, err)
	assert.False(t, created)

	// la clave original sigue vigente
	_, err = uc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestEnsureAdmin_SinPasswordEsInvalido(t *testing.T) {
	uc, _ := newAuth()
	_, err := uc.EnsureAdmin(context.Background(), "admin", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
