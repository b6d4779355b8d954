package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corp_edu_backend/internal/model"
	"corp_edu_backend/internal/util"
)

const secret = "middleware-test-secret"

func token(t *testing.T, role model.UserRole) string {
	t.Helper()
	u := &model.User{Email: "ana@corp.test", Role: role}
	u.ID = "u-ana"
	tok, err := util.GenerateJWT(u, secret, time.Hour)
	require.NoError(t, err)
	return tok
}

func newRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(secret)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, util.GetUserFromContext(c).UserID)
	})
	r.GET("/x", handlers...)
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter()

	tests := []struct {
		name   string
		header string
		query  string
		code   int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", "", http.StatusUnauthorized},
		{"header", "Bearer " + token(t, model.RoleEmployee), "", http.StatusOK},
		{"query for websocket", "", token(t, model.RoleEmployee), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.query != "" {
				req.URL.RawQuery = "token=" + tt.query
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestAuthMiddlewareRejectsOtherSecret(t *testing.T) {
	u := &model.User{Role: model.RoleAdmin}
	u.ID = "u-root"
	tok, err := util.GenerateJWT(u, "another-secret", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	newRouter().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleMiddleware(t *testing.T) {
	r := newRouter(RoleMiddleware(model.RoleAdmin))

	for role, code := range map[model.UserRole]int{model.RoleAdmin: http.StatusOK, model.RoleEmployee: http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+token(t, role))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, code, w.Code, role)
	}
}

type touchRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *touchRecorder) Touch(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, id)
	return nil
}

func (r *touchRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func TestActivityMiddlewareThrottles(t *testing.T) {
	rec := &touchRecorder{}
	r := newRouter(ActivityMiddleware(rec, time.Hour))
	tok := token(t, model.RoleEmployee)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
}
