package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ventas-api/internal/application/auth"
	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/application/usecase"
	"github.com/jhoicas/Ventas-api/internal/domain"
)

// AuthHandler maneja login y alta de operadores.
type AuthHandler struct {
	uc     *auth.AuthUseCase
	userUC *usecase.UserUseCase
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase, userUC *usecase.UserUseCase) *AuthHandler {
	return &AuthHandler{uc: uc, userUC: userUC}
}

// Login godoc
// @Summary      Iniciar sesión
// @Description  Cada login abre una sesión nueva (jti del token); las ventas pendientes se guardan por sesión.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "username, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.Login(c.UserContext(), in)
	if err != nil {
		if err == domain.ErrUserNotFound || err == domain.ErrUnauthorized {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
		}
		if err == domain.ErrForbidden {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "cuenta inactiva"})
		}
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CreateUser godoc
// @Summary      Crear operador
// @Tags         auth
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateUserRequest  true  "username, password, name, role"
// @Success      201   {object}  dto.UserResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/auth/users [post]
func (h *AuthHandler) CreateUser(c *fiber.Ctx) error {
	var in dto.CreateUserRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	user, err := h.uc.RegisterUser(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// ListUsers godoc
// @Summary      Listar operadores
// @Tags         auth
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {array}  dto.UserResponse
// @Router       /api/auth/users [get]
func (h *AuthHandler) ListUsers(c *fiber.Ctx) error {
	p := pageParams(c)
	out, err := h.userUC.List(c.UserContext(), p.Limit, p.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
