package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/referenciales/referenciales/internal/database"
	"github.com/referenciales/referenciales/internal/database/conservadores"
	"github.com/referenciales/referenciales/internal/database/referenciales"
	"github.com/referenciales/referenciales/internal/database/users"
)

// degradedThreshold is how slow the database probe may be before the
// service reports degraded instead of healthy.
const degradedThreshold = 5000 * time.Millisecond

type HealthServices struct {
	Database string `json:"database"`
	API      string `json:"api"`
}

type HealthStats struct {
	Referenciales int64 `json:"referenciales"`
	Conservadores int64 `json:"conservadores"`
	Users         int64 `json:"users"`
}

type HealthStatus struct {
	Status   string         `json:"status"` // healthy | degraded | unhealthy
	Time     string         `json:"time"`
	Version  string         `json:"version,omitempty"`
	Services HealthServices `json:"services"`
	Stats    *HealthStats   `json:"stats,omitempty"`
}

type HealthResponse struct {
	Success bool         `json:"success"`
	Health  HealthStatus `json:"health"`
}

// probeFunc pings the database and reports how long the round trip took.
// Injectable so tests can simulate slow or failing probes.
type probeFunc func() (time.Duration, error)

type HealthController struct {
	db      *database.Database
	version string
	probe   probeFunc
}

func NewHealthController(db *database.Database, version string) *HealthController {
	hc := &HealthController{
		db:      db,
		version: version,
	}
	hc.probe = hc.pingDatabase
	return hc
}

func (h *HealthController) pingDatabase() (time.Duration, error) {
	start := time.Now()
	if h.db == nil {
		return 0, errors.New("database not configured")
	}
	sqlDB, err := h.db.DB.DB()
	if err != nil {
		return time.Since(start), err
	}
	if err := sqlDB.Ping(); err != nil {
		return time.Since(start), err
	}
	return time.Since(start), nil
}

// Status reports service health. The database probe decides the overall
// status: a failure is unhealthy (503), a slow probe is degraded (200),
// anything else is healthy (200). `?stats=true` adds table counts.
func (h *HealthController) Status(c *gin.Context) {
	status := "healthy"
	services := HealthServices{Database: "ok", API: "ok"}

	elapsed, err := h.probe()
	if err != nil {
		services.Database = "error: " + err.Error()
		status = "unhealthy"
	} else if elapsed > degradedThreshold {
		services.Database = "slow"
		status = "degraded"
	}

	health := HealthStatus{
		Status:   status,
		Time:     time.Now().Format(time.RFC3339),
		Version:  h.version,
		Services: services,
	}

	if c.Query("stats") == "true" && status != "unhealthy" {
		health.Stats = h.collectStats()
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, HealthResponse{
		Success: status != "unhealthy",
		Health:  health,
	})
}

func (h *HealthController) collectStats() *HealthStats {
	stats := &HealthStats{}
	if n, err := referenciales.NewRepository(h.db.DB).CountAll(); err == nil {
		stats.Referenciales = n
	}
	if n, err := conservadores.NewRepository(h.db.DB).Count(); err == nil {
		stats.Conservadores = n
	}
	if n, err := users.NewRepository(h.db.DB).Count(); err == nil {
		stats.Users = n
	}
	return stats
}
