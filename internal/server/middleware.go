package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ledgerline/backoffice/internal/auth"
	"github.com/ledgerline/backoffice/internal/authz"
	"github.com/ledgerline/backoffice/internal/models"
	"github.com/ledgerline/backoffice/internal/session"
)

const (
	// tokenCookie is the cookie carrying the session JWT.
	tokenCookie = "token"

	userKey   = "user"
	claimsKey = "claims"
)

// currentUser returns the authenticated user set by requireAuth.
func currentUser(c *gin.Context) *models.User {
	user, _ := c.MustGet(userKey).(*models.User)
	return user
}

// requireAuth validates the token cookie, rejects revoked tokens, and
// loads the full user (with role) into the request context.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(tokenCookie)
		if err != nil || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token provided"})
			return
		}

		claims, err := s.jwt.Validate(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		if s.revoker != nil {
			err := s.revoker.Check(c.Request.Context(), claims.ID)
			if errors.Is(err, session.ErrTokenRevoked) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
				return
			}
			if err != nil {
				// Fail open: a revocation outage must not take auth down.
				slog.Warn("Revocation check failed", "error", err)
			}
		}

		user, err := s.store.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to load user"})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not found"})
			return
		}

		c.Set(userKey, user)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// requireLevel gates a route on the requester's access level.
func (s *Server) requireLevel(requiredLevel int) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if err := authz.CheckLevel(user.AccessLevel(), requiredLevel); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": err.Error()})
			return
		}
		c.Next()
	}
}

// corsMiddleware allows the single configured browser origin with
// credentials, since the token travels in a cookie.
func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", s.cfg.CORSOrigin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// requestLogger logs every request with its outcome.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		userID := ""
		if user, ok := c.Get(userKey); ok {
			userID = user.(*models.User).ID
		}

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"user_id", userID,
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			slog.Error("Request failed", attrs...)
		} else {
			slog.Info("Request completed", attrs...)
		}
	}
}

// setTokenCookie writes the session cookie with the same lifetime as the
// token itself.
func (s *Server) setTokenCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.jwt.TokenDuration().Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearTokenCookie expires the session cookie.
func (s *Server) clearTokenCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionClaims returns the claims set by requireAuth.
func sessionClaims(c *gin.Context) *auth.Claims {
	claims, _ := c.MustGet(claimsKey).(*auth.Claims)
	return claims
}
