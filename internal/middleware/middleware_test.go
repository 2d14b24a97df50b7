package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/tg-marketplace/internal/auth"
	"github.com/iliyamo/tg-marketplace/internal/config"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func serve(e *echo.Echo, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	now := time.Now()
	issuer := auth.NewIssuer("secret", time.Minute, time.Hour, auth.WithClock(func() time.Time { return now }))
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		uid, ok := UserID(c)
		require.True(t, ok)
		return c.String(http.StatusOK, strconv.FormatUint(uid, 10))
	}, JWTAuth(issuer))

	pair, err := issuer.Issue(42)
	require.NoError(t, err)
	stale := auth.NewIssuer("secret", time.Minute, time.Hour, auth.WithClock(func() time.Time { return now.Add(-time.Hour) }))
	old, err := stale.Issue(42)
	require.NoError(t, err)
	forged, err := auth.NewIssuer("other", time.Minute, time.Hour).Issue(42)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		status int
		body   string
	}{
		{"valid", pair.Access.Value, http.StatusOK, "42"},
		{"missing", "", http.StatusUnauthorized, "missing bearer token"},
		{"expired", old.Access.Value, http.StatusUnauthorized, "token expired"},
		{"wrong secret", forged.Access.Value, http.StatusUnauthorized, "invalid token"},
		{"refresh token", pair.Refresh.Value, http.StatusUnauthorized, "invalid token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(e, http.MethodGet, "/me", tt.token)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestRateLimit(t *testing.T) {
	mr, rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		KeyStrategy:    "ip",
		Prefix:         "rl",
	}
	e := echo.New()
	e.Use(RateLimit(cfg, rdb, zap.NewNop()))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/", "").Code)
	rec := serve(e, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = serve(e, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Fail open without redis.
	mr.Close()
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/", "").Code)
}

func TestRateLimitKeysOnUserBehindOneIP(t *testing.T) {
	mr, rdb := newRedis(t)
	issuer := auth.NewIssuer("secret", time.Minute, time.Hour)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		KeyStrategy:    "ip_user",
		Prefix:         "rl",
	}
	e := echo.New()
	e.Use(Identify(issuer))
	e.Use(RateLimit(cfg, rdb, zap.NewNop()))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	alice, err := issuer.Issue(1)
	require.NoError(t, err)
	bob, err := issuer.Issue(2)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/", alice.Access.Value).Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/", bob.Access.Value).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodGet, "/", alice.Access.Value).Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodGet, "/", "garbage").Code, "an invalid token counts as anonymous")

	assert.True(t, mr.Exists("rl:ip:192.0.2.1:user:1"))
	assert.True(t, mr.Exists("rl:ip:192.0.2.1:user:2"))
}

func TestRateLimitAccountSubject(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		KeyStrategy:    "ip_user",
		Prefix:         "rl",
	}
	e := echo.New()
	e.POST("/login", func(c echo.Context) error {
		var body map[string]string
		if err := c.Bind(&body); err != nil {
			return err
		}
		return c.String(http.StatusOK, body["nickname_or_email"])
	}, RateLimit(cfg, rdb, zap.NewNop(), WithAnonSubject(AccountSubject("nickname_or_email"))))

	login := func(name string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"nickname_or_email":"`+name+`","password":"x"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := login("alice")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String(), "handler still sees the body")
	assert.Equal(t, http.StatusOK, login("bob").Code)
	assert.Equal(t, http.StatusTooManyRequests, login("ALICE").Code)
}

func TestCache(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "cache", MaxBodyBytes: 1 << 10}
	calls := 0
	e := echo.New()
	read := e.Group("", Cache(cfg, rdb, zap.NewNop()))
	read.GET("/products/:id", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, map[string]any{"id": c.Param("id"), "calls": calls})
	})
	e.POST("/products", func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	}, InvalidateCache(cfg, rdb, zap.NewNop()))

	first := serve(e, http.MethodGet, "/products/1", "")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := serve(e, http.MethodGet, "/products/1", "")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, echo.MIMEApplicationJSON, second.Header().Get(echo.HeaderContentType))

	other := serve(e, http.MethodGet, "/products/2", "")
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"))
	assert.Equal(t, 2, calls)

	assert.Equal(t, http.StatusCreated, serve(e, http.MethodPost, "/products", "").Code)
	assert.Equal(t, "MISS", serve(e, http.MethodGet, "/products/1", "").Header().Get("X-Cache"))
	assert.Equal(t, 3, calls)
}

func TestMetricsCountsByRoute(t *testing.T) {
	e := echo.New()
	e.Use(Metrics())
	e.GET("/items/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/items/:id", "204"))
	serve(e, http.MethodGet, "/items/7", "")
	serve(e, http.MethodGet, "/items/8", "")

	assert.Equal(t, before+2, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/items/:id", "204")))
	assert.Zero(t, testutil.ToFloat64(httpInflight))
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger(zap.NewNop()))
	e.GET("/", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTeapot) })

	rec := serve(e, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(requestIDHeader))
}
