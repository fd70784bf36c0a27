package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivehelp/hivehelp-api/internal/model"
	"github.com/hivehelp/hivehelp-api/internal/utils"
)

const testSecret = "test-secret"

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get("user_id"),
		"role":    c.Get("role"),
	})
}

func doRequest(t *testing.T, mw []echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := okHandler
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	require.NoError(t, h(c))
	return rec
}

func TestJWTAuthMissingToken(t *testing.T) {
	rec := doRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthMalformedToken(t *testing.T) {
	rec := doRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("other-secret", 7, model.RoleCustomer, 5)
	require.NoError(t, err)
	rec := doRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthValidTokenInjectsClaims(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 7, model.RoleBeekeeper, 5)
	require.NoError(t, err)
	rec := doRequest(t, []echo.MiddlewareFunc{JWTAuth(testSecret)}, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), model.RoleBeekeeper)
}

func TestRequireRoleAllowsMatchingRole(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 1, model.RoleAdmin, 5)
	require.NoError(t, err)
	mw := []echo.MiddlewareFunc{JWTAuth(testSecret), RequireRole(model.RoleAdmin)}
	rec := doRequest(t, mw, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleRejectsOtherRoles(t *testing.T) {
	// A valid customer token must still be forbidden on an admin-only chain.
	for _, role := range []string{model.RoleCustomer, model.RoleBeekeeper} {
		tok, err := utils.NewAccessToken(testSecret, 2, role, 5)
		require.NoError(t, err)
		mw := []echo.MiddlewareFunc{JWTAuth(testSecret), RequireRole(model.RoleAdmin)}
		rec := doRequest(t, mw, "Bearer "+tok.Token)
		assert.Equal(t, http.StatusForbidden, rec.Code, "role %s", role)
	}
}

func TestRequireRoleWithoutAuthContext(t *testing.T) {
	rec := doRequest(t, []echo.MiddlewareFunc{RequireRole(model.RoleAdmin)}, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleMultipleRoles(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 3, model.RoleBeekeeper, 5)
	require.NoError(t, err)
	mw := []echo.MiddlewareFunc{JWTAuth(testSecret), RequireRole(model.RoleCustomer, model.RoleBeekeeper)}
	rec := doRequest(t, mw, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
}
