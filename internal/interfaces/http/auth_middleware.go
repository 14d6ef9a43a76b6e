package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventory-ledger/pkg/jwt"
)

// Locals keys para UserID y Role en Fiber.
const (
	LocalUserID = "user_id"
	LocalRole   = "role"
)

// AuthMiddleware valida el Bearer Token JWT y deja UserID y Role en c.Locals.
// El esquema se compara sin distinguir mayúsculas.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return respondFail(c, fiber.StatusUnauthorized, CodeMissingToken, "Authorization header requerido")
		}
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return respondFail(c, fiber.StatusUnauthorized, CodeInvalidToken, "formato: Bearer <token>")
		}
		token = strings.TrimSpace(token)
		if token == "" {
			return respondFail(c, fiber.StatusUnauthorized, CodeMissingToken, "token vacío")
		}
		claims, err := jwt.Parse(jwtSecret, token)
		if err != nil {
			return respondFail(c, fiber.StatusUnauthorized, CodeInvalidToken, "token inválido o expirado")
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalRole, claims.Role)
		return c.Next()
	}
}

// RequireRole deja pasar solo a los roles indicados. Va después de AuthMiddleware.
// Token sin rol: 401 MISSING_ROLE. Rol no permitido: 403 FORBIDDEN.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		role := GetRole(c)
		if role == "" {
			return respondFail(c, fiber.StatusUnauthorized, CodeMissingRole, "el token no incluye rol")
		}
		if _, ok := allowed[role]; !ok {
			return respondFail(c, fiber.StatusForbidden, CodeForbidden, "el rol '"+role+"' no tiene acceso a este recurso")
		}
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetRole devuelve el rol del contexto (después del middleware de auth).
func GetRole(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRole).(string)
	return s
}
