package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bookreview/internal/config"
	"bookreview/internal/httpapi/models"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockTokenBlacklist mocks the TokenBlacklist interface
type MockTokenBlacklist struct {
	mock.Mock
}

func (m *MockTokenBlacklist) Add(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret: "test-secret-test-secret-test-secret!",
		JWTExpiry: 24 * time.Hour,
	}
}

func TestSignup_Success(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockBlacklist := new(MockTokenBlacklist)
	authService := NewAuthService(mockUserRepo, mockBlacklist, testConfig())

	mockUserRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	token, user, err := authService.Signup(context.Background(), "testuser", "test@example.com", "password123")

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotNil(t, user)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, "test@example.com", user.Email)
	// Password is stored hashed, never verbatim
	assert.NotEqual(t, "password123", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
	mockUserRepo.AssertExpectations(t)
}

func TestSignup_EmailExists(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockBlacklist := new(MockTokenBlacklist)
	authService := NewAuthService(mockUserRepo, mockBlacklist, testConfig())

	existingUser := &models.User{Email: "test@example.com"}
	mockUserRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(existingUser, nil)

	token, user, err := authService.Signup(context.Background(), "testuser", "test@example.com", "password123")

	assert.Error(t, err)
	assert.Equal(t, ErrEmailInUse, err)
	assert.Empty(t, token)
	assert.Nil(t, user)
	mockUserRepo.AssertExpectations(t)
}

func TestSignup_LookupFailureAborts(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockBlacklist := new(MockTokenBlacklist)
	authService := NewAuthService(mockUserRepo, mockBlacklist, testConfig())

	// A failed existence check is not a free email; the signup must not
	// proceed to the insert on it.
	mockUserRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, context.DeadlineExceeded)

	token, user, err := authService.Signup(context.Background(), "testuser", "test@example.com", "password123")

	assert.Error(t, err)
	assert.NotEqual(t, ErrEmailInUse, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, token)
	assert.Nil(t, user)
	mockUserRepo.AssertNotCalled(t, "Create")
}

func TestLogin_Success(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockBlacklist := new(MockTokenBlacklist)
	authService := NewAuthService(mockUserRepo, mockBlacklist, testConfig())

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:       "user-123",
		Username: "testuser",
		Email:    "test@example.com",
		Password: string(hashed),
	}
	mockUserRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(user, nil)

	token, loggedIn, err := authService.Login(context.Background(), "test@example.com", "password123")

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "user-123", loggedIn.ID)
	mockUserRepo.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockBlacklist := new(MockTokenBlacklist)
	authService := NewAuthService(mockUserRepo, mockBlacklist, testConfig())

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{ID: "user-123", Email: "test@example.com", Password: string(hashed)}
	mockUserRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(user, nil)

	token, loggedIn, err := authService.Login(context.Background(), "test@example.com", "wrongpassword")

	assert.Error(t, err)
	assert.Equal(t, ErrInvalidCredentials, err)
	assert.Empty(t, token)
	assert.Nil(t, loggedIn)
	mockUserRepo.AssertExpectations(t)
}

func TestLogin_UnknownEmail(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockBlacklist := new(MockTokenBlacklist)
	authService := NewAuthService(mockUserRepo, mockBlacklist, testConfig())

	mockUserRepo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

	token, loggedIn, err := authService.Login(context.Background(), "nobody@example.com", "password123")

	assert.Error(t, err)
	assert.Equal(t, ErrInvalidCredentials, err)
	assert.Empty(t, token)
	assert.Nil(t, loggedIn)
	mockUserRepo.AssertExpectations(t)
}

func TestAuthenticate_Success(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockBlacklist := new(MockTokenBlacklist)
	authService := NewAuthService(mockUserRepo, mockBlacklist, testConfig())

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{ID: "user-123", Email: "test@example.com", Password: string(hashed)}
	mockUserRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(user, nil)
	token, _, err := authService.Login(context.Background(), "test@example.com", "password123")
	assert.NoError(t, err)

	mockBlacklist.On("Contains", mock.Anything, token).Return(false, nil)
	mockUserRepo.On("FindByID", mock.Anything, "user-123").Return(user, nil)

	resolved, err := authService.Authenticate(context.Background(), token)

	assert.NoError(t, err)
	assert.Equal(t, "user-123", resolved.ID)
	mockBlacklist.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
}

func TestAuthenticate_RevokedToken(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockBlacklist := new(MockTokenBlacklist)
	authService := NewAuthService(mockUserRepo, mockBlacklist, testConfig())

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{ID: "user-123", Email: "test@example.com", Password: string(hashed)}
	mockUserRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(user, nil)
	token, _, err := authService.Login(context.Background(), "test@example.com", "password123")
	assert.NoError(t, err)

	mockBlacklist.On("Contains", mock.Anything, token).Return(true, nil)

	resolved, err := authService.Authenticate(context.Background(), token)

	assert.Error(t, err)
	assert.Equal(t, ErrRevokedToken, err)
	assert.Nil(t, resolved)
	mockBlacklist.AssertExpectations(t)
}

func TestAuthenticate_GarbageToken(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockBlacklist := new(MockTokenBlacklist)
	authService := NewAuthService(mockUserRepo, mockBlacklist, testConfig())

	resolved, err := authService.Authenticate(context.Background(), "not-a-token")

	assert.Error(t, err)
	assert.Equal(t, ErrInvalidToken, err)
	assert.Nil(t, resolved)
}

func TestAuthenticate_UserGone(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockBlacklist := new(MockTokenBlacklist)
	authService := NewAuthService(mockUserRepo, mockBlacklist, testConfig())

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{ID: "user-123", Email: "test@example.com", Password: string(hashed)}
	mockUserRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(user, nil)
	token, _, err := authService.Login(context.Background(), "test@example.com", "password123")
	assert.NoError(t, err)

	mockBlacklist.On("Contains", mock.Anything, token).Return(false, nil)
	mockUserRepo.On("FindByID", mock.Anything, "user-123").Return(nil, gorm.ErrRecordNotFound)

	resolved, err := authService.Authenticate(context.Background(), token)

	assert.Error(t, err)
	assert.Equal(t, ErrInvalidToken, err)
	assert.Nil(t, resolved)
}

func TestLogout_BlacklistsToken(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockBlacklist := new(MockTokenBlacklist)
	authService := NewAuthService(mockUserRepo, mockBlacklist, testConfig())

	mockBlacklist.On("Add", mock.Anything, "some-token").Return(nil)

	err := authService.Logout(context.Background(), "some-token")

	assert.NoError(t, err)
	mockBlacklist.AssertExpectations(t)
}
