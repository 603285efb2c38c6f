package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/promptdeck/promptdeck/internal/config"
	"github.com/promptdeck/promptdeck/internal/modules/model"
	"github.com/promptdeck/promptdeck/internal/modules/service"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, email, password string, age *int) (*model.User, error) {
	args := m.Called(ctx, email, password, age)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func newAuthTestStack(t *testing.T) (service.AuthService, *MockUserService, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTLMin = 30
	cfg.Auth.CookieName = "access_token"

	auth := service.NewAuthService(cfg)
	users := new(MockUserService)

	r := gin.New()
	r.Use(Auth(users, auth, cfg.Auth.CookieName))
	r.GET("/me", func(c *gin.Context) {
		user, ok := CurrentUser(c)
		assert.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"email": user.Email})
	})
	return auth, users, r
}

func TestAuthMiddlewareResolvesUser(t *testing.T) {
	auth, users, r := newAuthTestStack(t)
	stored := &model.User{ID: uuid.New(), Email: "u@example.com"}
	users.On("GetByEmail", mock.Anything, "u@example.com").Return(stored, nil)

	token, _, err := auth.IssueToken(stored)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "u@example.com")
}

func TestAuthMiddlewareRejectsMissingCookie(t *testing.T) {
	_, _, r := newAuthTestStack(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsTamperedToken(t *testing.T) {
	_, _, r := newAuthTestStack(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "eyJhbGciOiJIUzI1NiJ9.tampered.sig"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsDeletedUser(t *testing.T) {
	auth, users, r := newAuthTestStack(t)
	ghost := &model.User{ID: uuid.New(), Email: "gone@example.com"}
	users.On("GetByEmail", mock.Anything, "gone@example.com").Return(nil, service.ErrUserNotFound)

	token, _, err := auth.IssueToken(ghost)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
