package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/referenciales/referenciales/internal/audit"
	"github.com/referenciales/referenciales/internal/auth"
	"github.com/referenciales/referenciales/internal/csvimport"
	"github.com/referenciales/referenciales/internal/database"
	"github.com/referenciales/referenciales/internal/database/conservadores"
	"github.com/referenciales/referenciales/internal/database/referenciales"
	"github.com/referenciales/referenciales/internal/entities"
)

const defaultPageSize = 50

type ReferencialesController struct {
	db      *database.Database
	repo    *referenciales.Repository
	auditor *audit.Service
}

func NewReferencialesController(db *database.Database, auditor *audit.Service) *ReferencialesController {
	return &ReferencialesController{
		db:      db,
		repo:    referenciales.NewRepository(db.DB),
		auditor: auditor,
	}
}

func (rc *ReferencialesController) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/referenciales", rc.List)
	router.GET("/api/referenciales/:id", rc.Get)
	router.POST("/api/referenciales", rc.Create)
	router.PUT("/api/referenciales/:id", rc.Update)
	router.DELETE("/api/referenciales/:id", rc.Delete)
}

type referencialRequest struct {
	Fojas          string  `json:"fojas" binding:"required"`
	Numero         int     `json:"numero" binding:"required"`
	Anio           int     `json:"anio" binding:"required"`
	CBR            string  `json:"cbr" binding:"required"`
	Comprador      string  `json:"comprador" binding:"required"`
	Vendedor       string  `json:"vendedor" binding:"required"`
	Predio         string  `json:"predio" binding:"required"`
	Comuna         string  `json:"comuna" binding:"required"`
	Rol            string  `json:"rol" binding:"required"`
	Superficie     float64 `json:"superficie" binding:"required"`
	FechaEscritura string  `json:"fechaescritura" binding:"required"`
	Monto          int64   `json:"monto" binding:"required"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	Observaciones  string  `json:"observaciones"`
}

// validate applies the same field rules as the CSV import path, so a
// record is acceptable through one door iff it is acceptable through
// the other.
func (req *referencialRequest) validate() error {
	if req.Anio < 1800 || req.Anio > time.Now().Year() {
		return fmt.Errorf("año fuera de rango: %d", req.Anio)
	}
	if req.Superficie <= 0 {
		return errors.New("superficie debe ser mayor que cero")
	}
	if req.Monto <= 0 {
		return errors.New("monto debe ser mayor que cero")
	}
	if req.Lat != 0 || req.Lng != 0 {
		if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
			return errors.New("coordenadas fuera de rango")
		}
	}
	return nil
}

type listResponse struct {
	Data  []entities.Referencial `json:"data"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}

// List returns a paginated page of referenciales, optionally filtered
// by comuna and anio.
func (rc *ReferencialesController) List(c *gin.Context) {
	anio, ok := parseQueryInt(c, "anio")
	if !ok {
		return
	}
	page, ok := parseQueryInt(c, "page")
	if !ok {
		return
	}
	if page < 1 {
		page = 1
	}
	limit, ok := parseQueryInt(c, "limit")
	if !ok {
		return
	}
	if limit < 1 || limit > 500 {
		limit = defaultPageSize
	}

	refs, total, err := rc.repo.List(referenciales.Filters{
		Comuna: c.Query("comuna"),
		Anio:   anio,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		respondInternalError(c, err, "list referenciales")
		return
	}

	c.JSON(http.StatusOK, listResponse{
		Data:  refs,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func (rc *ReferencialesController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ref, err := rc.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, referenciales.ErrNotFound) {
			respondNotFound(c, "referencial")
			return
		}
		respondInternalError(c, err, "get referencial")
		return
	}

	c.JSON(http.StatusOK, ref)
}

// Create stores one referencial. The conservador is resolved or created
// from the CBR name, exactly as the CSV importer does.
func (rc *ReferencialesController) Create(c *gin.Context) {
	var req referencialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if err := req.validate(); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	fecha, err := csvimport.ParseFecha(req.FechaEscritura)
	if err != nil {
		respondBadRequest(c, "fecha de escritura inválida: "+req.FechaEscritura)
		return
	}

	conservador, err := conservadores.ResolveOrCreate(rc.db.DB, req.CBR, req.Comuna)
	if err != nil {
		respondInternalError(c, err, "resolve conservador")
		return
	}

	userID := GetUserID(c)
	ref := &entities.Referencial{
		Fojas:          req.Fojas,
		Numero:         req.Numero,
		Anio:           req.Anio,
		CBR:            req.CBR,
		Comprador:      req.Comprador,
		Vendedor:       req.Vendedor,
		Predio:         req.Predio,
		Comuna:         req.Comuna,
		Rol:            req.Rol,
		Superficie:     req.Superficie,
		FechaEscritura: fecha,
		Monto:          req.Monto,
		Lat:            req.Lat,
		Lng:            req.Lng,
		Observaciones:  req.Observaciones,
		UserID:         userID,
		ConservadorID:  conservador.ID,
	}

	if err := rc.repo.Create(ref); err != nil {
		respondInternalError(c, err, "create referencial")
		return
	}

	c.JSON(http.StatusCreated, ref)
}

// Update replaces the mutable fields of a referencial. Only the owner or
// an admin may modify a record.
func (rc *ReferencialesController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ref, err := rc.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, referenciales.ErrNotFound) {
			respondNotFound(c, "referencial")
			return
		}
		respondInternalError(c, err, "get referencial")
		return
	}

	if !rc.canMutate(c, ref) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "only the owner or an admin can modify this record"})
		return
	}

	var req referencialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if err := req.validate(); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	fecha, err := csvimport.ParseFecha(req.FechaEscritura)
	if err != nil {
		respondBadRequest(c, "fecha de escritura inválida: "+req.FechaEscritura)
		return
	}

	conservador, err := conservadores.ResolveOrCreate(rc.db.DB, req.CBR, req.Comuna)
	if err != nil {
		respondInternalError(c, err, "resolve conservador")
		return
	}

	ref.Fojas = req.Fojas
	ref.Numero = req.Numero
	ref.Anio = req.Anio
	ref.CBR = req.CBR
	ref.Comprador = req.Comprador
	ref.Vendedor = req.Vendedor
	ref.Predio = req.Predio
	ref.Comuna = req.Comuna
	ref.Rol = req.Rol
	ref.Superficie = req.Superficie
	ref.FechaEscritura = fecha
	ref.Monto = req.Monto
	ref.Lat = req.Lat
	ref.Lng = req.Lng
	ref.Observaciones = req.Observaciones
	ref.ConservadorID = conservador.ID

	if err := rc.repo.Update(ref); err != nil {
		respondInternalError(c, err, "update referencial")
		return
	}

	c.JSON(http.StatusOK, ref)
}

// Delete soft-deletes a referencial. Only the owner or an admin may
// delete a record.
func (rc *ReferencialesController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ref, err := rc.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, referenciales.ErrNotFound) {
			respondNotFound(c, "referencial")
			return
		}
		respondInternalError(c, err, "get referencial")
		return
	}

	if !rc.canMutate(c, ref) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "only the owner or an admin can delete this record"})
		return
	}

	if err := rc.repo.Delete(id); err != nil {
		respondInternalError(c, err, "delete referencial")
		return
	}

	if rc.auditor != nil {
		description := fmt.Sprintf("fojas %s N°%d/%d %s", ref.Fojas, ref.Numero, ref.Anio, ref.CBR)
		rc.auditor.LogDelete(GetUserID(c), "referencial", id, description, nil)
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "referencial deleted"})
}

// canMutate reports whether the current caller may modify the record:
// the record owner, any admin, or anyone while auth is disabled.
func (rc *ReferencialesController) canMutate(c *gin.Context, ref *entities.Referencial) bool {
	if auth.GetAuthType(c) == auth.AuthTypeNone {
		return true
	}
	if auth.GetUserRole(c) == entities.UserRoleAdmin {
		return true
	}
	return GetUserID(c) == ref.UserID
}
