package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"bookreview/internal/auth"
	"bookreview/internal/config"
	"bookreview/internal/httpapi/models"
	"bookreview/internal/httpapi/repository"
)

var (
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrRevokedToken       = errors.New("token has been revoked")
)

type AuthService interface {
	Signup(ctx context.Context, username, email, password string) (token string, user *models.User, err error)
	Login(ctx context.Context, email, password string) (token string, user *models.User, err error)
	Logout(ctx context.Context, token string) error
	// Authenticate resolves a bearer token to its user: signature check,
	// blacklist check, then user load. Any failure is terminal for the request.
	Authenticate(ctx context.Context, token string) (*models.User, error)
	TokenTTL() time.Duration
}

type authService struct {
	userRepo  repository.UserRepository
	blacklist repository.TokenBlacklist
	jwtSecret string
	jwtExpiry time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	blacklist repository.TokenBlacklist,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		blacklist: blacklist,
		jwtSecret: cfg.JWTSecret,
		jwtExpiry: cfg.JWTExpiry,
	}
}

// Signup registers a new user and issues a session token in one step.
func (s *authService) Signup(ctx context.Context, username, email, password string) (string, *models.User, error) {
	// Check if email is already registered. Only a clean miss means the email
	// is free; a lookup failure aborts the signup instead of racing the
	// unique index blind.
	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return "", nil, ErrEmailInUse
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, fmt.Errorf("check email: %w", err)
	}

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", nil, err
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: hashedPassword,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Login authenticates a user by email and password and returns a session token.
func (s *authService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		// User not found, dummy compare to mitigate timing attacks (always take same time)
		auth.VerifyPassword("$2a$10$7EqJtq98hPqEX7fNZaFWoOHi6VbU5h6K9v8u5rO0m3j0h6dX5r8e", password)
		return "", nil, ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(user.Password, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Logout blacklists the exact token value until its natural expiry.
func (s *authService) Logout(ctx context.Context, token string) error {
	return s.blacklist.Add(ctx, token)
}

func (s *authService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	userID, err := s.parseToken(tokenString)
	if err != nil {
		return nil, ErrInvalidToken
	}

	revoked, err := s.blacklist.Contains(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrRevokedToken
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		// The referenced user no longer exists; the token is worthless
		return nil, ErrInvalidToken
	}

	return user, nil
}

func (s *authService) TokenTTL() time.Duration {
	return s.jwtExpiry
}

func (s *authService) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(s.jwtExpiry).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) parseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidToken
	}

	return userID, nil
}
