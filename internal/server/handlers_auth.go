package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ledgerline/backoffice/internal/auth"
)

type registerRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	RoleID          string `json:"usertypeid"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleRegister creates an account and signs the caller in.
func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	if req.FirstName == "" || req.LastName == "" || req.Username == "" ||
		req.Password == "" || req.ConfirmPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide all required fields"})
		return
	}

	user, err := s.authn.Register(c.Request.Context(), auth.RegisterInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		RoleID:          req.RoleID,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrPasswordMismatch),
			errors.Is(err, auth.ErrWeakPassword),
			errors.Is(err, auth.ErrUsernameExists),
			errors.Is(err, auth.ErrUnknownRole):
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		default:
			slog.Error("Registration failed", "username", req.Username, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Registration failed"})
		}
		return
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		slog.Error("Failed to generate token", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Registration failed"})
		return
	}

	s.setTokenCookie(c, token)
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    user,
		"token":   token,
	})
}

// handleLogin verifies credentials and issues a token.
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid username or password"})
		return
	}

	user, err := s.authn.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		slog.Warn("Login failed", "username", req.Username)
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid username or password"})
		return
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		slog.Error("Failed to generate token", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Login failed"})
		return
	}

	s.setTokenCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}

// handleLogout revokes the live token and clears the cookie.
func (s *Server) handleLogout(c *gin.Context) {
	claims := sessionClaims(c)

	if s.revoker != nil && claims.ExpiresAt != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		if err := s.revoker.Revoke(c.Request.Context(), claims.ID, ttl); err != nil {
			slog.Warn("Failed to revoke token on logout", "user_id", claims.UserID, "error", err)
		}
	}

	s.clearTokenCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// handleCurrentUser returns the authenticated user.
func (s *Server) handleCurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": currentUser(c)})
}
