// Package server exposes the back-office API over HTTP.
//
// Routing, auth middleware, and response shaping live here; all business
// decisions are delegated to the authz policy and the billing engine.
package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledgerline/backoffice/internal/auth"
	"github.com/ledgerline/backoffice/internal/authz"
	"github.com/ledgerline/backoffice/internal/billing"
	"github.com/ledgerline/backoffice/internal/config"
	"github.com/ledgerline/backoffice/internal/session"
	"github.com/ledgerline/backoffice/internal/storage"
)

// Server is the HTTP front of the back-office API.
type Server struct {
	cfg     *config.Config
	store   storage.Store
	engine  *billing.Engine
	authn   auth.Authenticator
	jwt     *auth.JWTManager
	revoker *session.RevocationStore
	router  *gin.Engine
}

// New wires the router. revoker may be nil, which disables token
// revocation (logout then only clears the cookie).
func New(cfg *config.Config, store storage.Store, engine *billing.Engine,
	authn auth.Authenticator, jwtManager *auth.JWTManager, revoker *session.RevocationStore) *Server {

	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		cfg:     cfg,
		store:   store,
		engine:  engine,
		authn:   authn,
		jwt:     jwtManager,
		revoker: revoker,
		router:  router,
	}

	router.Use(s.corsMiddleware(), requestLogger(), metricsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Server is running"})
	})
	router.GET("/metrics", metricsHandler())

	authRoutes := router.Group("/api/auth")
	{
		authRoutes.POST("/register", s.handleRegister)
		authRoutes.POST("/login", s.handleLogin)
		authRoutes.POST("/logout", s.requireAuth(), s.handleLogout)
		authRoutes.GET("/me", s.requireAuth(), s.handleCurrentUser)
	}

	userRoutes := router.Group("/api/user", s.requireAuth())
	{
		userRoutes.GET("", s.requireLevel(authz.AdminLevel), s.handleListUsers)
		userRoutes.GET("/types", s.handleListRoles)
		userRoutes.PUT("/:id", s.handleUpdateUser)
		userRoutes.DELETE("/:id", s.requireLevel(authz.AdminLevel), s.handleDeleteUser)
	}

	billRoutes := router.Group("/api/bill", s.requireAuth())
	{
		billRoutes.GET("", s.requireLevel(authz.AdminLevel), s.handleListBills)
		billRoutes.GET("/report", s.requireLevel(authz.AdminLevel), s.handleBillReport)
		billRoutes.GET("/:id", s.requireLevel(authz.AdminLevel), s.handleGetBill)
		billRoutes.POST("", s.handleCreateBill)
		billRoutes.PUT("/:id/payment", s.requireLevel(authz.AdminLevel), s.handleRecordPayment)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})

	return s
}

// Handler returns the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the server on the configured port.
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%d", s.cfg.Port))
}
