package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/entity"
	"github.com/Studio-Zurich/fix-app-sub000/internal/http/middleware"
	"github.com/Studio-Zurich/fix-app-sub000/internal/pkg/apperror"
	"github.com/Studio-Zurich/fix-app-sub000/internal/service"
)

type memoryAdmins struct {
	mu     sync.Mutex
	admins map[uuid.UUID]*entity.AdminUser
}

func (m *memoryAdmins) Create(_ context.Context, a *entity.AdminUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.admins[a.ID] = a
	return nil
}

func (m *memoryAdmins) FindByEmail(_ context.Context, email string) (*entity.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.admins {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, apperror.ErrAdminNotFound
}

func (m *memoryAdmins) FindByID(_ context.Context, id uuid.UUID) (*entity.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.admins[id]; ok {
		return a, nil
	}
	return nil, apperror.ErrAdminNotFound
}

func (m *memoryAdmins) TouchLastLogin(context.Context, uuid.UUID) error { return nil }

func setupAdminRouter(t *testing.T) (*gin.Engine, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	auth := service.NewAuthService(&memoryAdmins{admins: map[uuid.UUID]*entity.AdminUser{}}, service.NewTokenManager("test-secret-test-secret-test-secret", time.Hour))
	_, err := auth.CreateAdmin(context.Background(), service.CreateAdminInput{
		Email:       "werkhof@gemeinde.example",
		Password:    "Sicher-123456",
		DisplayName: "Werkhof",
	})
	require.NoError(t, err)

	h := NewAdminHandler(auth, nil, nil)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.POST("/api/admin/login", h.Login)
	protected := r.Group("/api/admin")
	protected.Use(middleware.AuthMiddleware(auth))
	protected.GET("/reports/:id", h.GetReport)
	protected.PUT("/reports/:id/status", h.ChangeStatus)
	return r, auth
}

func TestAdminHandler_Login(t *testing.T) {
	r, _ := setupAdminRouter(t)

	w := doJSON(r, http.MethodPost, "/api/admin/login", map[string]string{
		"email":    "werkhof@gemeinde.example",
		"password": "Sicher-123456",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Data struct {
			AccessToken string `json:"access_token"`
			Admin       struct {
				Email string `json:"email"`
			} `json:"admin"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Data.AccessToken)
	assert.Equal(t, "werkhof@gemeinde.example", body.Data.Admin.Email)
}

func TestAdminHandler_LoginWrongPassword(t *testing.T) {
	r, _ := setupAdminRouter(t)

	w := doJSON(r, http.MethodPost, "/api/admin/login", map[string]string{
		"email":    "werkhof@gemeinde.example",
		"password": "falsch",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/admin/login", map[string]string{"email": "kein-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandler_RequiresBearerToken(t *testing.T) {
	r, _ := setupAdminRouter(t)

	w := doJSON(r, http.MethodGet, "/api/admin/reports/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/reports/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", "Bearer nonsense")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminHandler_InvalidReportIDWithToken(t *testing.T) {
	r, auth := setupAdminRouter(t)
	login, err := auth.Login(context.Background(), "werkhof@gemeinde.example", "Sicher-123456")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/reports/invalid-uuid", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token.Token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandler_ChangeStatus_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := &AdminHandler{}
	r.PUT("/reports/:id/status", h.ChangeStatus)

	w := doJSON(r, http.MethodPut, "/reports/"+uuid.NewString()+"/status", map[string]string{"status": "in_progress"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminHandler_ChangeStatus_MissingStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextAdminIDKey, uuid.New())
		c.Next()
	})
	h := &AdminHandler{}
	r.PUT("/reports/:id/status", h.ChangeStatus)

	w := doJSON(r, http.MethodPut, "/reports/"+uuid.NewString()+"/status", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
