package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/zefir_shop/pkg/tokens"
)

var secret = []byte("test-secret")

func token(t *testing.T, role string, exp time.Time) string {
	t.Helper()
	tok, err := tokens.CreateAccessToken(secret, 42, "ann@example.com", role, exp)
	require.NoError(t, err)
	return tok
}

func run(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*tokens.AccessClaims, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var got *tokens.AccessClaims
	err := mw(func(c echo.Context) error {
		got, _ = ClaimsFrom(c)
		return nil
	})(c)
	return got, err
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T", err)
	return he.Code
}

func TestBearerAuth_RequireAuth(t *testing.T) {
	m := NewBearerAuth(secret)
	valid := token(t, "user", time.Now().Add(time.Minute))
	expired := token(t, "user", time.Now().Add(-time.Minute))

	claims, err := run(t, m.RequireAuth, "Bearer "+valid)
	require.NoError(t, err)
	require.NotNil(t, claims)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	_, err = run(t, m.RequireAuth, "")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	_, err = run(t, m.RequireAuth, "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	_, err = run(t, m.RequireAuth, "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	other, err := tokens.CreateAccessToken([]byte("other"), 42, "", "user", time.Now().Add(time.Minute))
	require.NoError(t, err)
	_, err = run(t, m.RequireAuth, "Bearer "+other)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestBearerAuth_RequireAdmin(t *testing.T) {
	m := NewBearerAuth(secret)

	_, err := run(t, m.RequireAdmin, "Bearer "+token(t, "user", time.Now().Add(time.Minute)))
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	claims, err := run(t, m.RequireAdmin, "bearer "+token(t, "admin", time.Now().Add(time.Minute)))
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
}

func TestBearerAuth_AllowExpired(t *testing.T) {
	m := NewBearerAuth(secret)

	claims, err := run(t, m.AllowExpired, "Bearer "+token(t, "user", time.Now().Add(-time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", claims.Email)

	_, err = run(t, m.AllowExpired, "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tok, ok := BearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	_, ok = BearerToken("Bearer ")
	assert.False(t, ok)

	_, ok = BearerToken("abc")
	assert.False(t, ok)
}
