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
	"github.com/stretchr/testify/assert"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/entity"
	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/valueobject"
	"github.com/Studio-Zurich/fix-app-sub000/internal/pkg/apperror"
)

type stubAuth struct {
	admin *entity.AdminUser
	err   error
}

func (s stubAuth) Authenticate(context.Context, string) (*entity.AdminUser, error) {
	return s.admin, s.err
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	admin := &entity.AdminUser{ID: uuid.New(), IsActive: true}

	tests := []struct {
		name       string
		header     string
		auth       stubAuth
		wantStatus int
	}{
		{name: "no header", auth: stubAuth{admin: admin}, wantStatus: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", auth: stubAuth{admin: admin}, wantStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer x", auth: stubAuth{err: apperror.ErrUnauthorized}, wantStatus: http.StatusUnauthorized},
		{name: "inactive admin", header: "Bearer x", auth: stubAuth{err: apperror.ErrForbidden}, wantStatus: http.StatusForbidden},
		{name: "database down", header: "Bearer x", auth: stubAuth{err: apperror.Wrap(errors.New("conn"), apperror.ErrCodeDatabaseError, "db")}, wantStatus: http.StatusInternalServerError},
		{name: "valid", header: "Bearer x", auth: stubAuth{admin: admin}, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(ErrorHandler())
			r.GET("/admin", AuthMiddleware(tt.auth), func(c *gin.Context) {
				id, _ := c.Get(ContextAdminIDKey)
				assert.Equal(t, admin.ID, id)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.wantStatus, serve(r, req).Code)
		})
	}
}

func TestLocaleMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		query  string
		header string
		want   valueobject.Locale
	}{
		{name: "fallback", want: valueobject.LocaleDE},
		{name: "query wins", query: "?locale=en", header: "de-CH", want: valueobject.LocaleEN},
		{name: "accept language", header: "fr-CH, en;q=0.8", want: valueobject.LocaleEN},
		{name: "unsupported query falls back to header", query: "?locale=it", header: "de-CH", want: valueobject.LocaleDE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got valueobject.Locale
			r := gin.New()
			r.Use(LocaleMiddleware(valueobject.LocaleDE))
			r.GET("/", func(c *gin.Context) {
				got = LocaleFromContext(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Accept-Language", tt.header)
			}
			serve(r, req)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUUIDValidator(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/reports/:id", UUIDValidator("id"), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusBadRequest, serve(r, httptest.NewRequest(http.MethodGet, "/reports/abc", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/reports/"+uuid.NewString(), nil)).Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", RateLimitMiddleware(2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://melden.gemeinde.example"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://melden.gemeinde.example")
	w := serve(r, req)
	assert.Equal(t, "https://melden.gemeinde.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = serve(r, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)

	check := OriginAllowed([]string{"https://melden.gemeinde.example"})
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))
}

func TestErrorHandler_MasksInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/boom", func(c *gin.Context) { _ = c.Error(errors.New("sql: connection reset")) })
	r.GET("/missing", func(c *gin.Context) { _ = c.Error(apperror.ErrReportNotFound) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "sql:")

	w = serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}
