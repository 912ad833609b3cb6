package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bookreview/internal/httpapi/models"
	"bookreview/internal/httpapi/service"
)

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, username, email, password string) (string, *models.User, error) {
	args := m.Called(ctx, username, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*models.User), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*models.User), args.Error(2)
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) TokenTTL() time.Duration {
	return 24 * time.Hour
}

func protectedRouter(mockAuthService *MockAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(mockAuthService), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("userID")})
	})
	return r
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router := protectedRouter(mockAuthService)

	req, _ := http.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockAuthService.AssertNotCalled(t, "Authenticate")
}

func TestAuthMiddleware_BearerHeader(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router := protectedRouter(mockAuthService)

	user := &models.User{ID: "user-123", Username: "testuser"}
	mockAuthService.On("Authenticate", mock.Anything, "signed-token").Return(user, nil)

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer signed-token")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-123")
	mockAuthService.AssertExpectations(t)
}

func TestAuthMiddleware_CookieToken(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router := protectedRouter(mockAuthService)

	user := &models.User{ID: "user-123", Username: "testuser"}
	mockAuthService.On("Authenticate", mock.Anything, "cookie-token").Return(user, nil)

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "cookie-token"})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockAuthService.AssertExpectations(t)
}

func TestAuthMiddleware_RevokedToken(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router := protectedRouter(mockAuthService)

	mockAuthService.On("Authenticate", mock.Anything, "signed-token").Return(nil, service.ErrRevokedToken)

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer signed-token")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	mockAuthService := new(MockAuthService)
	router := protectedRouter(mockAuthService)

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "signed-token")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockAuthService.AssertNotCalled(t, "Authenticate")
}
