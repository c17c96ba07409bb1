package http

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/application/dto"
)

var validate = validator.New()

var tagMessages = map[string]string{
	"required": "campo obligatorio",
	"min":      "valor por debajo del mínimo",
	"max":      "valor por encima del máximo",
	"oneof":    "valor no permitido",
}

func init() {
	// decimal.Decimal como número para que min/gt/required no fallen
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	// errores por nombre JSON del campo
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// bindAndValidate parsea el cuerpo JSON y aplica los tags de validator.
// Devuelve false si ya escribió la respuesta de error.
func bindAndValidate(c *fiber.Ctx, req interface{}) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, badBody(c)
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !asValidationErrors(err, &verrs) {
			return false, badBody(c)
		}
		fields := make(map[string][]string, len(verrs))
		for _, fe := range verrs {
			msg, ok := tagMessages[fe.Tag()]
			if !ok {
				msg = fe.Tag()
			}
			fields[fe.Field()] = append(fields[fe.Field()], msg)
		}
		return false, c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: "revise los campos del formulario", Fields: fields,
		})
	}
	return true, nil
}

func asValidationErrors(err error, out *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*out = verrs
	}
	return ok
}

// pageParams limit/offset de la query con los límites de dto.PageRequest.
func pageParams(c *fiber.Ctx) dto.PageRequest {
	p := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	p.DefaultPage()
	return p
}
