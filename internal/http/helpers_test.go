package http

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/referenciales/referenciales/internal/database"
	"github.com/referenciales/referenciales/internal/entities"
)

// setupTestDB creates a fresh file-backed test database.
func setupTestDB(t *testing.T) (*database.Database, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

// seedReferencial inserts one referencial directly through gorm.
func seedReferencial(t *testing.T, db *database.Database, comuna string, anio int, userID uint, lat, lng float64) *entities.Referencial {
	t.Helper()
	ref := &entities.Referencial{
		Fojas:          "100",
		Numero:         1,
		Anio:           anio,
		CBR:            "CBR " + comuna,
		Comprador:      "Comprador Privado",
		Vendedor:       "Vendedor Privado",
		Predio:         "Predio en " + comuna,
		Comuna:         comuna,
		Rol:            "10-1",
		Superficie:     100,
		FechaEscritura: time.Date(anio, 6, 1, 0, 0, 0, 0, time.UTC),
		Monto:          50000000,
		Lat:            lat,
		Lng:            lng,
		UserID:         userID,
	}
	require.NoError(t, db.DB.Create(ref).Error)
	return ref
}
