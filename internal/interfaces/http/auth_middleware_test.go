package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/inventory-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/inventory-ledger/pkg/jwt"
)

const (
	authSecret = "auth-middleware-secret"
	authUserID = "7d0c7f3e-2f8a-4a51-9a57-0d6c1b2f4e10"
	authIssuer = "inventory-ledger-test"
)

// signed firma un token con el secreto de la suite; minutes < 0 produce un token vencido.
func signed(t *testing.T, secret, userID, role string, minutes int) string {
	t.Helper()
	tok, err := pkgjwt.Generate(secret, userID, role, authIssuer, minutes)
	require.NoError(t, err)
	return tok
}

// guardedApp expone GET /docs protegido por AuthMiddleware + RequireRole(roles...).
// El handler devuelve lo que quedó en Locals para verificar la extracción de claims.
func guardedApp(roles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/docs", apphttp.AuthMiddleware(authSecret), apphttp.RequireRole(roles...), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": apphttp.GetUserID(c), "role": apphttp.GetRole(c)})
	})
	return app
}

func call(t *testing.T, app *fiber.App, authorization string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/docs", nil)
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var raw json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	return resp.StatusCode, raw
}

func TestAuthMiddleware_Rechazos(t *testing.T) {
	tests := []struct {
		name          string
		authorization func(t *testing.T) string
		wantStatus    int
		wantCode      string
	}{
		{"sin header", func(*testing.T) string { return "" }, http.StatusUnauthorized, apphttp.CodeMissingToken},
		{"esquema Basic", func(*testing.T) string { return "Basic dXNlcjpwYXNz" }, http.StatusUnauthorized, apphttp.CodeInvalidToken},
		{"sin esquema", func(t *testing.T) string { return signed(t, authSecret, authUserID, "admin", 5) }, http.StatusUnauthorized, apphttp.CodeInvalidToken},
		{"token malformado", func(*testing.T) string { return "Bearer token.invalido.aqui" }, http.StatusUnauthorized, apphttp.CodeInvalidToken},
		{"firmado con otro secreto", func(t *testing.T) string { return "Bearer " + signed(t, "otro-secreto", authUserID, "admin", 5) }, http.StatusUnauthorized, apphttp.CodeInvalidToken},
		{"vencido", func(t *testing.T) string { return "Bearer " + signed(t, authSecret, authUserID, "admin", -5) }, http.StatusUnauthorized, apphttp.CodeInvalidToken},
		{"sin user_id", func(t *testing.T) string { return "Bearer " + signed(t, authSecret, "", "admin", 5) }, http.StatusUnauthorized, apphttp.CodeInvalidToken},
		{"sin rol", func(t *testing.T) string { return "Bearer " + signed(t, authSecret, authUserID, "", 5) }, http.StatusUnauthorized, apphttp.CodeMissingRole},
		{"rol no permitido", func(t *testing.T) string { return "Bearer " + signed(t, authSecret, authUserID, "auditor", 5) }, http.StatusForbidden, apphttp.CodeForbidden},
	}
	app := guardedApp(pkgjwt.RoleAdmin, pkgjwt.RoleBodeguero)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := call(t, app, tt.authorization(t))
			assert.Equal(t, tt.wantStatus, status)

			var env envelope
			require.NoError(t, json.Unmarshal(raw, &env))
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantCode, env.Code)
			assert.NotEmpty(t, env.Message)
			assert.Empty(t, env.Data)
		})
	}
}

func TestAuthMiddleware_RolesPermitidos(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		role    string
	}{
		{"admin en ruta de admin", []string{pkgjwt.RoleAdmin}, pkgjwt.RoleAdmin},
		{"bodeguero en ruta compartida", []string{pkgjwt.RoleAdmin, pkgjwt.RoleBodeguero}, pkgjwt.RoleBodeguero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := call(t, guardedApp(tt.allowed...), "Bearer "+signed(t, authSecret, authUserID, tt.role, 5))
			require.Equal(t, http.StatusOK, status)

			var locals map[string]string
			require.NoError(t, json.Unmarshal(raw, &locals))
			assert.Equal(t, authUserID, locals["user_id"])
			assert.Equal(t, tt.role, locals["role"])
		})
	}
}

func TestAuthMiddleware_EsquemaSinDistinguirMayusculas(t *testing.T) {
	app := guardedApp(pkgjwt.RoleBodeguero)
	status, _ := call(t, app, "bearer "+signed(t, authSecret, authUserID, pkgjwt.RoleBodeguero, 5))
	assert.Equal(t, http.StatusOK, status)
}

func TestRequireRole_BodegueroBloqueadoEnRutaDeAdmin(t *testing.T) {
	status, raw := call(t, guardedApp(pkgjwt.RoleAdmin), "Bearer "+signed(t, authSecret, authUserID, pkgjwt.RoleBodeguero, 5))
	assert.Equal(t, http.StatusForbidden, status)

	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, apphttp.CodeForbidden, env.Code)
	assert.Contains(t, env.Message, pkgjwt.RoleBodeguero)
}
