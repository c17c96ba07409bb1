package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	appsales "github.com/jhoicas/Ventas-api/internal/application/sales"
	"github.com/jhoicas/Ventas-api/pkg/jwt"
)

// Locals keys de la sesión en Fiber.
const (
	LocalUserID    = "user_id"
	LocalUsername  = "username"
	LocalRole      = "role"
	LocalSessionID = "session_id"
)

// AuthMiddleware valida el Bearer Token JWT y carga usuario, rol y sesión en c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		session, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil || session.UserID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalUserID, session.UserID)
		c.Locals(LocalUsername, session.Username)
		c.Locals(LocalRole, session.Role)
		c.Locals(LocalSessionID, session.SessionID)
		return c.Next()
	}
}

// RequireRole autoriza solo a los roles indicados. Usar después de AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "el token no incluye rol"})
		}
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin permiso para esta operación"})
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	return localString(c, LocalUserID)
}

// GetRole devuelve el rol del usuario autenticado.
func GetRole(c *fiber.Ctx) string {
	return localString(c, LocalRole)
}

// GetSessionID devuelve el id de sesión (jti del token).
func GetSessionID(c *fiber.Ctx) string {
	return localString(c, LocalSessionID)
}

// GetActor operador y sesión del request, para el flujo de confirmación de ventas.
func GetActor(c *fiber.Ctx) appsales.Actor {
	return appsales.Actor{
		OperatorID: GetUserID(c),
		SessionID:  GetSessionID(c),
		Role:       GetRole(c),
	}
}

func localString(c *fiber.Ctx, key string) string {
	v := c.Locals(key)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
