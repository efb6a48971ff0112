package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/herbtrade/herbtrade-backend-go/config"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRequireRoles_Allows(t *testing.T) {
	c, rec := newTestContext(t)
	c.Set(CtxRole, "admin")

	err := RequireRoles("admin")(okHandler)(c)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoles_AllowsAnyListed(t *testing.T) {
	c, rec := newTestContext(t)
	c.Set(CtxRole, "seller")

	err := RequireRoles("seller", "admin")(okHandler)(c)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoles_DeniesWrongRole(t *testing.T) {
	c, rec := newTestContext(t)
	c.Set(CtxRole, "user")

	err := RequireRoles("admin")(okHandler)(c)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoles_DeniesMissingRole(t *testing.T) {
	c, rec := newTestContext(t)

	err := RequireRoles("admin")(okHandler)(c)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	c, rec := newTestContext(t)

	err := Authenticate(okHandler)(c)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_BadHeaderFormat(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := Authenticate(okHandler)(c)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_GarbageToken(t *testing.T) {
	config.Set(&config.Config{JWTSecret: "test-secret"})
	t.Cleanup(func() { config.Set(nil) })

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := Authenticate(okHandler)(c)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
