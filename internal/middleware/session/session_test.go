package session

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

var testSecret = []byte("test-jwt-secret")

func signed(t *testing.T, method jwt.SigningMethod, key any, subject string, exp time.Time) string {
	t.Helper()
	tkn := jwt.NewWithClaims(method, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	raw, err := tkn.SignedString(key)
	require.NoError(t, err)
	return raw
}

func run(t *testing.T, secret []byte, req *http.Request) (string, error) {
	t.Helper()
	e := echo.New()
	c := e.NewContext(req, httptest.NewRecorder())

	var got string
	err := Middleware(secret)(func(c echo.Context) error {
		got = ID(c)
		return nil
	})(c)
	return got, err
}

func TestMiddleware_EmptySecretIsAnonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)

	got, err := run(t, nil, req)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestMiddleware_CookieAndBearer(t *testing.T) {
	raw := signed(t, jwt.SigningMethodHS256, testSecret, "user-42", time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: raw})
	got, err := run(t, testSecret, req)
	require.NoError(t, err)
	assert.Equal(t, "user-42", got)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+raw)
	got, err = run(t, testSecret, req)
	require.NoError(t, err)
	assert.Equal(t, "user-42", got)
}

func TestMiddleware_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "missing token", token: ""},
		{name: "garbage", token: "not-a-jwt"},
		{name: "wrong secret", token: signed(t, jwt.SigningMethodHS256, []byte("other"), "u", time.Now().Add(time.Hour))},
		{name: "expired", token: signed(t, jwt.SigningMethodHS256, testSecret, "u", time.Now().Add(-time.Hour))},
		{name: "other hmac", token: signed(t, jwt.SigningMethodHS512, testSecret, "u", time.Now().Add(time.Hour))},
		{name: "no subject", token: signed(t, jwt.SigningMethodHS256, testSecret, "", time.Now().Add(time.Hour))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
			if tt.token != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: tt.token})
			}

			_, err := run(t, testSecret, req)

			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, http.StatusUnauthorized, he.Code)
		})
	}
}
