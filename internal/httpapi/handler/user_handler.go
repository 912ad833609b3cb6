package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bookreview/internal/httpapi/dto"
	"bookreview/internal/httpapi/models"
	"bookreview/internal/httpapi/service"
)

type UserHandler struct {
	authService service.AuthService
}

func NewUserHandler(authService service.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// RegisterRoutes registers the user routes. Signup and login are public but
// rate-limited; profile and logout sit behind the auth gate.
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, authGate, limiter gin.HandlerFunc) {
	rg.POST("/signup", limiter, h.Signup)
	rg.POST("/login", limiter, h.Login)
	rg.GET("/profile", authGate, h.Profile)
	rg.GET("/logout", authGate, h.Logout)
}

// Signup handles POST /users/signup
func (h *UserHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	token, user, err := h.authService.Signup(ctx, req.Username, req.Email, req.Password)
	if errors.Is(err, service.ErrEmailInUse) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  dto.FromModelToUserResponse(user),
	})
}

// Login handles POST /users/login and sets the session cookie
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	token, user, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	c.SetCookie("token", token, int(h.authService.TokenTTL().Seconds()), "/", "", false, true)

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"user":    dto.FromModelToUserResponse(user),
		"message": "Login successful",
	})
}

// Profile handles GET /users/profile, echoing the user the auth gate resolved
func (h *UserHandler) Profile(c *gin.Context) {
	userValue, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	user := userValue.(*models.User)
	c.JSON(http.StatusOK, dto.FromModelToUserResponse(user))
}

// Logout handles GET /users/logout: clear the cookie and blacklist the token,
// whichever way it was carried.
func (h *UserHandler) Logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)

	token := c.GetString("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.authService.Logout(ctx, token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
