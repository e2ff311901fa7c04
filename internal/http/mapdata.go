package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/referenciales/referenciales/internal/config"
	"github.com/referenciales/referenciales/internal/database"
	"github.com/referenciales/referenciales/internal/database/referenciales"
	"github.com/referenciales/referenciales/internal/mapfeed"
)

// MapController serves the anonymous public map feed. Everything under
// /api/public/ is reachable without credentials and CORS-open, so only
// the allow-listed projection ever leaves this controller.
type MapController struct {
	db  *database.Database
	cfg config.Map
}

func NewMapController(db *database.Database, cfg config.Map) *MapController {
	return &MapController{
		db:  db,
		cfg: cfg,
	}
}

func (mc *MapController) RegisterRoutes(router *gin.Engine) {
	public := router.Group("/api/public", publicCORS())
	public.GET("/map-data", mc.MapData)
	public.OPTIONS("/map-data", func(c *gin.Context) {})
	public.GET("/map-config", mc.MapConfig)
	public.OPTIONS("/map-config", func(c *gin.Context) {})
}

type mapDataResponse struct {
	Success  bool             `json:"success"`
	Data     []mapfeed.Point  `json:"data"`
	Metadata mapfeed.Metadata `json:"metadata"`
}

type mapDataError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// MapData returns every geocoded referencial projected for the public
// map. Buyer, seller and owner never appear in the output. Supports
// optional ?comuna= and ?anio= filters; the result is capped at the
// configured maximum point count.
func (mc *MapController) MapData(c *gin.Context) {
	comuna := c.Query("comuna")
	anio, ok := parseQueryInt(c, "anio")
	if !ok {
		return
	}

	limit := mc.cfg.MaxPoints
	if requested, ok := parseQueryInt(c, "limit"); !ok {
		return
	} else if requested > 0 && requested < limit {
		limit = requested
	}

	refs, err := referenciales.NewRepository(mc.db.DB).ListWithCoordinates(comuna, anio, limit)
	if err != nil {
		log.Printf("Internal error (list map data): %v", err)
		c.JSON(http.StatusInternalServerError, mapDataError{
			Success: false,
			Error:   "internal server error",
		})
		return
	}

	center := mapfeed.Center{Lat: mc.cfg.CenterLat, Lng: mc.cfg.CenterLng}
	points, metadata := mapfeed.ProjectAll(refs, center, mc.cfg.DefaultZoom)

	c.JSON(http.StatusOK, mapDataResponse{
		Success:  true,
		Data:     points,
		Metadata: metadata,
	})
}

// MapConfig returns the static map configuration: tile layer, default
// viewport and the popup field layout clients should render.
func (mc *MapController) MapConfig(c *gin.Context) {
	center := mapfeed.Center{Lat: mc.cfg.CenterLat, Lng: mc.cfg.CenterLng}
	c.JSON(http.StatusOK, mapfeed.NewConfig(center, mc.cfg.DefaultZoom))
}
