package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/pastryjoy-api/internal/application"
	"github.com/oksasatya/pastryjoy-api/internal/domain/entity"
)

func init() { gin.SetMode(gin.TestMode) }

type stubVerifier map[string]*entity.User

func (s stubVerifier) UserFromToken(_ context.Context, token string) (*entity.User, error) {
	switch token {
	case "inactive":
		return nil, application.ErrInactiveUser
	case "broken":
		return nil, errors.New("db down")
	}
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, application.ErrInvalidCredentials
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAndRequireAdmin(t *testing.T) {
	admin := &entity.User{ID: uuid.New(), Username: "baker", Role: entity.RoleAdmin, IsActive: true}
	user := &entity.User{ID: uuid.New(), Username: "customer", Role: entity.RoleUser, IsActive: true}
	v := stubVerifier{"admin-token": admin, "user-token": user}

	r := gin.New()
	r.GET("/me", Auth(v), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Username+":"+c.GetString(CtxUserIDKey))
	})
	r.GET("/admin", Auth(v), RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"missing header", "/me", "", http.StatusUnauthorized},
		{"wrong scheme", "/me", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"unknown token", "/me", "Bearer nope", http.StatusUnauthorized},
		{"inactive", "/me", "Bearer inactive", http.StatusUnauthorized},
		{"store failure", "/me", "Bearer broken", http.StatusInternalServerError},
		{"user", "/me", "Bearer user-token", http.StatusOK},
		{"lowercase scheme", "/me", "bearer user-token", http.StatusOK},
		{"user on admin route", "/admin", "Bearer user-token", http.StatusForbidden},
		{"admin on admin route", "/admin", "Bearer admin-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	assert.Equal(t, "customer:"+user.ID.String(), serve(r, req).Body.String())
}

func TestRequireAdminWithoutAuth(t *testing.T) {
	r := gin.New()
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := serve(r, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(w.Body.String())
	require.NoError(t, err)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	assert.Equal(t, incoming, serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "<script>")
	assert.NotEqual(t, "<script>", serve(r, req).Body.String())
}

func TestRealIPAndPrivateAllow(t *testing.T) {
	allow := AllowPrivateIP()
	r := gin.New()
	r.Use(RealIP())
	r.GET("/", func(c *gin.Context) {
		if allow(c) {
			c.String(http.StatusOK, "private:"+ipFromCtx(c))
			return
		}
		c.String(http.StatusOK, "public:"+ipFromCtx(c))
	})

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"cloudflare wins", map[string]string{"CF-Connecting-IP": "203.0.113.7", "X-Forwarded-For": "10.0.0.1"}, "public:203.0.113.7"},
		{"left-most forwarded", map[string]string{"X-Forwarded-For": "10.1.2.3, 203.0.113.9"}, "private:10.1.2.3"},
		{"x-real-ip", map[string]string{"X-Real-IP": "192.168.1.4"}, "private:192.168.1.4"},
		{"garbage falls back", map[string]string{"X-Forwarded-For": "not-an-ip"}, "public:192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, serve(r, req).Body.String())
		})
	}
}

func TestRateLimitKeys(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	var keys []string
	r.GET("/orders/:id", func(c *gin.Context) {
		keys = append(keys, KeyByIP()(c), KeyByIPAndPath()(c), KeyByUserID()(c))
		c.Set(CtxUserIDKey, "u-1")
		keys = append(keys, KeyByUserID()(c))
	})
	req := httptest.NewRequest(http.MethodGet, "/orders/42", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.5")
	serve(r, req)

	assert.Equal(t, []string{
		"rl:ip:203.0.113.5",
		"rl:path:/orders/:id:ip:203.0.113.5",
		"rl:user:anon:ip:203.0.113.5",
		"rl:user:u-1",
	}, keys)
}

func TestRateLimitDisabledWithoutRedis(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimit(nil, 1, 0, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
}

// counterScripter stands in for Redis: it runs the fixed-window script as a
// plain in-memory counter.
type counterScripter struct {
	hits map[string]int64
	err  error
}

func (f *counterScripter) EvalSha(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	cmd := redis.NewCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.hits[keys[0]]++
	cmd.SetVal([]interface{}{f.hits[keys[0]], int64(1500)})
	return cmd
}

func (f *counterScripter) Eval(ctx context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	return f.EvalSha(ctx, "", keys, args...)
}

func (f *counterScripter) EvalRO(ctx context.Context, s string, keys []string, args ...interface{}) *redis.Cmd {
	return f.Eval(ctx, s, keys, args...)
}

func (f *counterScripter) EvalShaRO(ctx context.Context, s string, keys []string, args ...interface{}) *redis.Cmd {
	return f.EvalSha(ctx, s, keys, args...)
}

func (f *counterScripter) ScriptExists(ctx context.Context, _ ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceCmd(ctx)
}

func (f *counterScripter) ScriptLoad(ctx context.Context, _ string) *redis.StringCmd {
	return redis.NewStringCmd(ctx)
}

func TestRateLimitCountsPerKey(t *testing.T) {
	rdb := &counterScripter{hits: map[string]int64{}}
	r := gin.New()
	limit := RateLimit(rdb, 2, time.Minute, KeyByIP(), nil)
	r.GET("/", limit, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.OPTIONS("/", limit, func(c *gin.Context) { c.Status(http.StatusNoContent) })

	var codes []int
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, last.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, "2", last.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "2", last.Header().Get("Retry-After"), "1.5s rounds up")

	pre := httptest.NewRequest(http.MethodOptions, "/", nil)
	assert.Equal(t, http.StatusNoContent, serve(r, pre).Code, "preflight is not counted")
}

func TestRateLimitFailsOpen(t *testing.T) {
	rdb := &counterScripter{err: errors.New("connection refused")}
	r := gin.New()
	r.GET("/", RateLimit(rdb, 1, time.Minute, KeyByIP(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 3; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRequestLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := gin.New()
	r.Use(RequestIDMiddleware(), RequestLogger(logger))
	r.GET("/ok/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
		c.Status(http.StatusInternalServerError)
	})

	serve(r, httptest.NewRequest(http.MethodGet, "/ok/7", nil))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "/ok/:id", entry.Data["path"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])
	assert.NotEmpty(t, entry.Data["request_id"])

	serve(r, httptest.NewRequest(http.MethodGet, "/fail", nil))
	entry = hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Contains(t, entry.Data["errors"], "boom")
}
