package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/referenciales/referenciales/internal/config"
	"github.com/referenciales/referenciales/internal/database"
	"github.com/referenciales/referenciales/internal/mapfeed"
)

func newMapRouter(db *database.Database) *gin.Engine {
	router := gin.New()
	cfg := config.Map{
		CenterLat:   -33.4489,
		CenterLng:   -70.6693,
		DefaultZoom: 10,
		MaxPoints:   1000,
	}
	NewMapController(db, cfg).RegisterRoutes(router)
	return router
}

func TestMapController_MapData(t *testing.T) {
	t.Run("returns only geocoded points without private fields", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		seedReferencial(t, db, "Santiago", 2023, 42, -33.44, -70.66)
		seedReferencial(t, db, "Santiago", 2023, 42, 0, 0) // ungeocoded, must not appear

		router := newMapRouter(db)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/public/map-data", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

		var resp mapDataResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		require.Len(t, resp.Data, 1)
		assert.Equal(t, 1, resp.Metadata.Total)
		assert.Equal(t, -33.4489, resp.Metadata.Center.Lat)

		// Raw payload must never contain party names or ownership
		raw := w.Body.String()
		assert.NotContains(t, raw, "Comprador Privado")
		assert.NotContains(t, raw, "Vendedor Privado")
		assert.NotContains(t, raw, "userId")
		assert.NotContains(t, raw, "user_id")

		// Monto is presented as formatted pesos
		assert.Equal(t, "$50.000.000", resp.Data[0].Monto)
	})

	t.Run("comuna and anio filters narrow the feed", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		seedReferencial(t, db, "Santiago", 2022, 1, -33.44, -70.66)
		seedReferencial(t, db, "Providencia", 2023, 1, -33.43, -70.61)

		router := newMapRouter(db)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/public/map-data?comuna=providencia&anio=2023", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp mapDataResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, "Providencia", resp.Data[0].Comuna)
	})

	t.Run("limit truncates the feed", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		seedReferencial(t, db, "Santiago", 2023, 1, -33.44, -70.66)
		seedReferencial(t, db, "Santiago", 2023, 1, -33.45, -70.67)

		router := newMapRouter(db)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/public/map-data?comuna=Santiago&limit=1", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp mapDataResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Data, 1)
	})

	t.Run("database failure is a success false envelope", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		router := newMapRouter(db)

		// Break the pool underneath the handler
		sqlDB, err := db.DB.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/public/map-data", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		var resp mapDataError
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.NotEmpty(t, resp.Error)
	})

	t.Run("empty database yields an empty array, not null", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		router := newMapRouter(db)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/public/map-data", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"data":[]`)
	})

	t.Run("malformed anio is a 400", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		router := newMapRouter(db)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/public/map-data?anio=veinte", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("OPTIONS preflight is answered", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()

		router := newMapRouter(db)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("OPTIONS", "/api/public/map-data", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestMapController_MapConfig(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	router := newMapRouter(db)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/public/map-config", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	var cfg mapfeed.Config
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cfg))
	assert.Equal(t, 10, cfg.DefaultZoom)
	assert.NotEmpty(t, cfg.TileURL)
	assert.NotEmpty(t, cfg.PopupFields)
}
