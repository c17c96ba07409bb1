package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
	"github.com/jhoicas/Ventas-api/internal/domain"
	rules "github.com/jhoicas/Ventas-api/internal/domain/sales"
)

// respondError traduce errores de dominio a dto.ErrorResponse con su código HTTP.
func respondError(c *fiber.Ctx, err error) error {
	if fields := rules.FieldErrors(err); fields != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error(), Fields: fields})
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "revise los campos del formulario", Fields: fields})
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrProductInUse):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "PRODUCT_IN_USE", Message: err.Error()})
	case errors.Is(err, domain.ErrUsernameTaken):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "USERNAME_TAKEN", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrConfirmationRequired):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFIRMATION_REQUIRED", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrSaleImmutable):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "SALE_IMMUTABLE", Message: err.Error()})
	case errors.Is(err, domain.ErrLineItemReadOnly):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "LINE_ITEM_READ_ONLY", Message: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()})
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error no controlado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
