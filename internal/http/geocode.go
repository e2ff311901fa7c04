package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/referenciales/referenciales/internal/audit"
	"github.com/referenciales/referenciales/internal/geocoding"
)

// geocodeTimeout bounds a full run through the strategy chain.
const geocodeTimeout = 30 * time.Second

type GeocodeController struct {
	resolver *geocoding.Resolver
	auditor  *audit.Service
}

func NewGeocodeController(resolver *geocoding.Resolver, auditor *audit.Service) *GeocodeController {
	return &GeocodeController{
		resolver: resolver,
		auditor:  auditor,
	}
}

func (gc *GeocodeController) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/geocode-sii", gc.Geocode)
}

type geocodeRequest struct {
	Rol    string `json:"rol" binding:"required"`
	Comuna string `json:"comuna" binding:"required"`
}

type geocodeResponse struct {
	Success bool              `json:"success"`
	Method  string            `json:"method"`
	Data    *geocoding.Result `json:"data"`
}

// Geocode resolves a SII property rol to coordinates. Strategies run in
// order until one produces a result; the method used is reported so
// callers can tell an exact hit from a comuna-level approximation.
func (gc *GeocodeController) Geocode(c *gin.Context) {
	var req geocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "rol and comuna are required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), geocodeTimeout)
	defer cancel()

	result, err := gc.resolver.Resolve(ctx, req.Rol, req.Comuna)
	if gc.auditor != nil {
		method := ""
		if result != nil {
			method = result.Method
		}
		gc.auditor.LogGeocode(GetUserID(c), req.Rol, req.Comuna, method, err)
	}
	if err != nil {
		if errors.Is(err, geocoding.ErrInvalidRol) {
			respondBadRequest(c, "rol inválido: debe tener formato NNNNN-NN")
			return
		}
		if errors.Is(err, geocoding.ErrNoResult) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "no se encontraron coordenadas para el rol indicado",
			})
			return
		}
		respondInternalError(c, err, "geocode")
		return
	}

	c.JSON(http.StatusOK, geocodeResponse{
		Success: true,
		Method:  result.Method,
		Data:    result,
	})
}
