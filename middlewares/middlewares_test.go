package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/food-listing-dashboard/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(handlers...)
	r.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"role": c.GetString("role")})
	})
	return r
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareDisabled(t *testing.T) {
	r := newEngine(AuthMiddleware(nil))
	w := do(r, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware(t *testing.T) {
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	token, err := tokens.GenerateToken("admin", "operator")
	require.NoError(t, err)
	r := newEngine(AuthMiddleware(tokens))

	tests := []struct {
		name string
		set  func(*http.Request)
		want int
	}{
		{"missing header", func(*http.Request) {}, http.StatusUnauthorized},
		{"not bearer", func(req *http.Request) { req.Header.Set("Authorization", "Basic abc") }, http.StatusUnauthorized},
		{"garbage token", func(req *http.Request) { req.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"valid header", func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK},
		{"valid query", func(req *http.Request) { req.URL.RawQuery = "token=" + token }, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ok", nil)
			tt.set(req)
			assert.Equal(t, tt.want, do(r, req).Code)
		})
	}

	tokens.Blacklist(token, time.Now().Add(time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, do(r, req).Code)
}

func TestRoleCheck(t *testing.T) {
	withRole := func(role string) gin.HandlerFunc {
		return func(c *gin.Context) { c.Set("role", role) }
	}

	r := newEngine(withRole("viewer"), RoleCheck("operator"))
	assert.Equal(t, http.StatusForbidden, do(r, httptest.NewRequest(http.MethodGet, "/ok", nil)).Code)

	r = newEngine(withRole("operator"), RoleCheck("operator"))
	assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/ok", nil)).Code)

	// mounted on its own, a missing role is rejected
	r = newEngine(RoleCheck("operator"))
	assert.Equal(t, http.StatusUnauthorized, do(r, httptest.NewRequest(http.MethodGet, "/ok", nil)).Code)

	r = newEngine(AuthMiddleware(nil), RoleCheck("operator"))
	assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/ok", nil)).Code)
}

func TestCORS(t *testing.T) {
	r := newEngine(CORSMiddlewares("https://dash.example.org"))

	w := do(r, httptest.NewRequest(http.MethodOptions, "/ok", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://dash.example.org", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	r = newEngine(CORSMiddlewares("*"))
	w = do(r, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestSecurityHeaders(t *testing.T) {
	w := do(newEngine(SecurityHeaders()), httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID(), LoggerMiddleware())

	w := do(r, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = do(r, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("1.2.3.4"))
	assert.True(t, rl.allow("1.2.3.4"))
	assert.False(t, rl.allow("1.2.3.4"))
	assert.True(t, rl.allow("5.6.7.8"))

	now = now.Add(61 * time.Second)
	assert.True(t, rl.allow("1.2.3.4"))

	now = now.Add(10 * time.Minute)
	rl.sweep()
	assert.Empty(t, rl.ips)
}

func TestRateLimitHandler(t *testing.T) {
	r := newEngine(NewRateLimiter(1, time.Minute).RateLimit())

	assert.Equal(t, http.StatusOK, do(r, httptest.NewRequest(http.MethodGet, "/ok", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, httptest.NewRequest(http.MethodGet, "/ok", nil)).Code)
}

func TestStrictRateLimiterIsPerClient(t *testing.T) {
	r := newEngine(NewStrictRateLimiter(time.Hour, 2))

	from := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		req.RemoteAddr = ip + ":5000"
		return do(r, req).Code
	}
	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, from("10.0.0.1"))
	assert.Equal(t, http.StatusOK, from("10.0.0.2"))
}
