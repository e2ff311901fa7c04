package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/referenciales/referenciales/internal/geocoding"
)

// fixedStrategy returns the same result or error for every lookup.
type fixedStrategy struct {
	result *geocoding.Result
	err    error
}

func (s fixedStrategy) Name() string { return "fixed" }

func (s fixedStrategy) Geocode(ctx context.Context, rol, comuna string) (*geocoding.Result, error) {
	return s.result, s.err
}

func newGeocodeRouter(strategies ...geocoding.Strategy) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewGeocodeController(geocoding.NewResolver(strategies...), nil).RegisterRoutes(router)
	return router
}

func postGeocode(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/geocode-sii", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestGeocodeController_Geocode(t *testing.T) {
	t.Run("successful lookup reports the method used", func(t *testing.T) {
		router := newGeocodeRouter(fixedStrategy{
			result: &geocoding.Result{Lat: -33.44, Lng: -70.66, Method: geocoding.MethodAPIGeocoding},
		})

		w := postGeocode(router, `{"rol":"123-45","comuna":"Santiago"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp geocodeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, geocoding.MethodAPIGeocoding, resp.Method)
		require.NotNil(t, resp.Data)
		assert.Equal(t, -33.44, resp.Data.Lat)
		assert.Equal(t, "123-45", resp.Data.Rol)
	})

	t.Run("fallback result carries its warning through", func(t *testing.T) {
		router := newGeocodeRouter(
			fixedStrategy{err: errors.New("api down")},
			fixedStrategy{result: &geocoding.Result{
				Lat: -33.45, Lng: -70.67,
				Method:  geocoding.MethodFallback,
				Warning: "Coordenadas aproximadas a nivel de comuna",
			}},
		)

		w := postGeocode(router, `{"rol":"123-45","comuna":"Santiago"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp geocodeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, geocoding.MethodFallback, resp.Method)
		assert.NotEmpty(t, resp.Data.Warning)
	})

	t.Run("malformed rol is a 400 before any strategy runs", func(t *testing.T) {
		router := newGeocodeRouter(fixedStrategy{
			result: &geocoding.Result{Lat: 1, Lng: 2},
		})

		w := postGeocode(router, `{"rol":"not a rol","comuna":"Santiago"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("exhausted chain is a 404", func(t *testing.T) {
		router := newGeocodeRouter(fixedStrategy{err: errors.New("down")})

		w := postGeocode(router, `{"rol":"123-45","comuna":"Santiago"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing fields are a 400", func(t *testing.T) {
		router := newGeocodeRouter(fixedStrategy{})

		w := postGeocode(router, `{"rol":"123-45"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
