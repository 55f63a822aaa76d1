package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "secret"

func signToken(t *testing.T, userID int, role string) string {
	t.Helper()

	claims := &JwtCustomClaims{
		UserID: userID,
		Name:   "Rahim Uddin",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func runThrough(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	require.NoError(t, err)
	return rec, c
}

func TestRequireSession_ValidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signToken(t, 7, "customer"))

	rec, c := runThrough(t, RequireSession(testSecret), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	userID, role, ok := ResolveSession(c)
	assert.True(t, ok)
	assert.Equal(t, 7, userID)
	assert.Equal(t, "customer", role)
}

func TestRequireSession_SessionCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: signToken(t, 7, "customer")})

	rec, _ := runThrough(t, RequireSession(testSecret), req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireSession_MissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rec, _ := runThrough(t, RequireSession(testSecret), req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireSession_BadSignature(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signToken(t, 7, "customer")+"x")

	rec, _ := runThrough(t, RequireSession(testSecret), req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalSession_NoToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rec, c := runThrough(t, OptionalSession(testSecret), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	_, _, ok := ResolveSession(c)
	assert.False(t, ok)
}

func TestOptionalSession_WithToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signToken(t, 9, "customer"))

	rec, c := runThrough(t, OptionalSession(testSecret), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	userID, _, ok := ResolveSession(c)
	assert.True(t, ok)
	assert.Equal(t, 9, userID)
}

func TestResolveSession_ZeroUserIDIsNoSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signToken(t, 0, "customer"))

	_, c := runThrough(t, OptionalSession(testSecret), req)

	_, _, ok := ResolveSession(c)
	assert.False(t, ok)
}
