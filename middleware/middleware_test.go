package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": c.GetString("userId")})
	})
	return r
}

func do(r http.Handler, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminAuthMiddleware(t *testing.T) {
	r := newRouter(AdminAuthMiddleware("s3cret"))

	assert.Equal(t, http.StatusUnauthorized, do(r, "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Authorization", "Bearer wrong").Code)
	assert.Equal(t, http.StatusOK, do(r, "Authorization", "Bearer s3cret").Code)

	disabled := newRouter(AdminAuthMiddleware(""))
	assert.Equal(t, http.StatusForbidden, do(disabled, "Authorization", "Bearer ").Code)
}

func TestJWTAuthMiddleware(t *testing.T) {
	secret := "jwt-secret"
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "h1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	r := newRouter(JWTAuthMiddleware(secret))
	w := do(r, "Authorization", "Bearer "+signed)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":"h1"}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(r, "Authorization", "Bearer not-a-token").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "", "").Code)

	open := newRouter(JWTAuthMiddleware(""))
	assert.Equal(t, http.StatusOK, do(open, "", "").Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newRouter(RateLimitMiddleware(2))

	assert.Equal(t, http.StatusOK, do(r, "X-Forwarded-For", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, do(r, "X-Forwarded-For", "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, "X-Forwarded-For", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, do(r, "X-Forwarded-For", "10.0.0.2").Code)
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := newRouter(RequestLogger(zap.NewNop()))

	w := do(r, "X-Request-ID", "req-42")
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))

	w = do(r, "", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
