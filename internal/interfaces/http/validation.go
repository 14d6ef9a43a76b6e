package http

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Los errores usan el nombre JSON (o query) del campo.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		}
		return name
	})
	return v
}

// parseBody decodifica el JSON del cuerpo y lo valida. Si falla ya escribió la respuesta 400 y ok es false.
func parseBody(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, respondFail(c, fiber.StatusBadRequest, CodeInvalidBody, "cuerpo inválido")
	}
	if err := validate.Struct(out); err != nil {
		return false, respondFail(c, fiber.StatusBadRequest, CodeValidation, validationMessage(err))
	}
	return true, nil
}

// parseQuery igual que parseBody para los parámetros de la query.
func parseQuery(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.QueryParser(out); err != nil {
		return false, respondFail(c, fiber.StatusBadRequest, CodeValidation, "parámetros de consulta inválidos")
	}
	if err := validate.Struct(out); err != nil {
		return false, respondFail(c, fiber.StatusBadRequest, CodeValidation, validationMessage(err))
	}
	return true, nil
}

// validationMessage une los errores por campo: "items[0].product_id: es requerido; reason: máximo 500 caracteres".
func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, e := range verrs {
		parts = append(parts, fieldPath(e)+": "+fieldMessage(e))
	}
	return strings.Join(parts, "; ")
}

// fieldPath quita el nombre del struct raíz del namespace (CreateAdjustmentRequest.items[0].product_id).
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		// los structs embebidos (PageRequest) no aportan nombre
		return strings.TrimLeft(ns[i+1:], ".")
	}
	return e.Field()
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "es requerido"
	case "min":
		if e.Kind() == reflect.String {
			return "mínimo " + e.Param() + " caracteres"
		}
		if e.Kind() == reflect.Slice {
			return "debe tener al menos " + e.Param() + " elemento(s)"
		}
		return "debe ser mayor o igual a " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "máximo " + e.Param() + " caracteres"
		}
		return "debe ser menor o igual a " + e.Param()
	case "oneof":
		return "debe ser uno de: " + e.Param()
	case "nefield":
		return "debe ser distinto del campo " + e.Param()
	case "uuid":
		return "UUID inválido"
	default:
		return "valor inválido"
	}
}
