package http

import (
	"github.com/referenciales/referenciales/internal/audit"
	"github.com/referenciales/referenciales/internal/auth"
	"github.com/referenciales/referenciales/internal/config"
	"github.com/referenciales/referenciales/internal/database"
	"github.com/referenciales/referenciales/internal/geocoding"
)

// RouterConfig holds every dependency the router wires into controllers.
// A single struct keeps NewRouter testable and the parameter count sane.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Resolver *geocoding.Resolver
	Auditor  *audit.Service

	// Authentication (nil fields disable the corresponding layer)
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	AuthConfig     config.Auth
	CSRFSecret     []byte
	SecureCookies  bool

	// Map feed
	MapConfig config.Map

	// Application info
	Version string
}
