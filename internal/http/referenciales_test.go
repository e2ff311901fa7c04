package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/referenciales/referenciales/internal/database"
	"github.com/referenciales/referenciales/internal/entities"
)

func newReferencialesRouter(db *database.Database) *gin.Engine {
	router := gin.New()
	NewReferencialesController(db, nil).RegisterRoutes(router)
	return router
}

const createBody = `{
	"fojas": "1234",
	"numero": 567,
	"anio": 2023,
	"cbr": "CBR Santiago",
	"comprador": "Juan Pérez",
	"vendedor": "María González",
	"predio": "Casa en Providencia",
	"comuna": "Providencia",
	"rol": "123-45",
	"superficie": 120.5,
	"fechaescritura": "2023-05-15",
	"monto": 85000000
}`

func TestReferencialesController_Create(t *testing.T) {
	t.Run("creates a record and resolves the conservador", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()
		router := newReferencialesRouter(db)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/referenciales", bytes.NewBufferString(createBody))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var created entities.Referencial
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.NotZero(t, created.ID)
		assert.NotZero(t, created.ConservadorID, "conservador resolved from the CBR name")
		assert.Equal(t, "Providencia", created.Comuna)
	})

	t.Run("field rules match the CSV import path", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()
		router := newReferencialesRouter(db)

		bad := `{
			"fojas": "1", "numero": 1, "anio": 1750, "cbr": "CBR X",
			"comprador": "A", "vendedor": "B", "predio": "P", "comuna": "C",
			"rol": "1-1", "superficie": 10, "fechaescritura": "2020-01-01", "monto": 100
		}`

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/referenciales", bytes.NewBufferString(bad))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unparseable fecha is a 400", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()
		router := newReferencialesRouter(db)

		bad := `{
			"fojas": "1", "numero": 1, "anio": 2020, "cbr": "CBR X",
			"comprador": "A", "vendedor": "B", "predio": "P", "comuna": "C",
			"rol": "1-1", "superficie": 10, "fechaescritura": "algún día", "monto": 100
		}`

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/referenciales", bytes.NewBufferString(bad))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReferencialesController_ListAndGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	seedReferencial(t, db, "Santiago", 2022, 1, -33.44, -70.66)
	ref := seedReferencial(t, db, "Providencia", 2023, 1, 0, 0)
	router := newReferencialesRouter(db)

	t.Run("list with filters and pagination", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/referenciales?comuna=Providencia", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp listResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, int64(1), resp.Total)
		assert.Equal(t, 1, resp.Page)
	})

	t.Run("get by id includes the full record", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", fmt.Sprintf("/api/referenciales/%d", ref.ID), nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var got entities.Referencial
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, ref.ID, got.ID)
		assert.Equal(t, "Comprador Privado", got.Comprador, "authenticated API exposes parties")
	})

	t.Run("unknown id is a 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/referenciales/99999", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("non-numeric id is a 400", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/referenciales/abc", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReferencialesController_UpdateAndDelete(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ref := seedReferencial(t, db, "Santiago", 2022, 0, -33.44, -70.66)
	router := newReferencialesRouter(db)

	t.Run("update replaces mutable fields", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", fmt.Sprintf("/api/referenciales/%d", ref.ID), bytes.NewBufferString(createBody))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var got entities.Referencial
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "Providencia", got.Comuna)
		assert.Equal(t, int64(85000000), got.Monto)
	})

	t.Run("delete removes the record", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", fmt.Sprintf("/api/referenciales/%d", ref.ID), nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		req, _ = http.NewRequest("GET", fmt.Sprintf("/api/referenciales/%d", ref.ID), nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("delete unknown id is a 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/referenciales/99999", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
