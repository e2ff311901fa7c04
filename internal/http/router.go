package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/referenciales/referenciales/internal/auth"
	"github.com/referenciales/referenciales/internal/entities"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth - inject default user ID
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	healthController := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", healthController.Status)

	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		authController := auth.NewController(cfg.AuthService, cfg.SessionManager)
		authController.RegisterRoutes(router)
	}

	referencialesController := NewReferencialesController(cfg.Database, cfg.Auditor)
	referencialesController.RegisterRoutes(router)

	importController := NewImportController(cfg.Database, cfg.Auditor)
	importController.RegisterRoutes(router)

	if cfg.Resolver != nil {
		geocodeController := NewGeocodeController(cfg.Resolver, cfg.Auditor)
		geocodeController.RegisterRoutes(router)
	}

	mapController := NewMapController(cfg.Database, cfg.MapConfig)
	mapController.RegisterRoutes(router)

	if cfg.AuthService != nil {
		adminOnly := requireAdmin(cfg.AuthMiddleware)
		usersController := NewUsersController(cfg.Database, cfg.AuthService, cfg.Auditor)
		usersController.RegisterRoutes(router, adminOnly)
	}

	return router
}

// requireAdmin builds the admin gate for user management. With auth
// disabled there is no admin middleware, so the gate is a no-op.
func requireAdmin(m *auth.Middleware) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return m.RequireRole(entities.UserRoleAdmin)
}
