package http

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/referenciales/referenciales/internal/audit"
	"github.com/referenciales/referenciales/internal/auth"
	"github.com/referenciales/referenciales/internal/csvimport"
	"github.com/referenciales/referenciales/internal/database"
	"github.com/referenciales/referenciales/internal/database/referenciales"
)

// maxUploadSize limits CSV uploads to 10 MiB.
const maxUploadSize = 10 << 20

type ImportController struct {
	db       *database.Database
	importer *csvimport.Importer
	auditor  *audit.Service
}

func NewImportController(db *database.Database, auditor *audit.Service) *ImportController {
	return &ImportController{
		db:       db,
		importer: csvimport.NewImporter(db.DB),
		auditor:  auditor,
	}
}

func (ic *ImportController) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/referenciales/upload-csv", ic.Upload)
	router.GET("/api/referenciales/csv-template", ic.Template)
	router.GET("/api/referenciales/export-csv", ic.Export)
}

type uploadResponse struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Message string `json:"message"`
}

type uploadErrorResponse struct {
	Error            string                      `json:"error"`
	ValidationErrors []csvimport.ValidationError `json:"validationErrors,omitempty"`
}

// resolveOwner decides which user the imported rows belong to: the
// authenticated identity when there is one, otherwise an explicit
// userId form field.
func resolveOwner(c *gin.Context) (uint, bool) {
	if id := GetUserID(c); id != auth.DefaultUserID {
		return id, true
	}

	raw := c.PostForm("userId")
	if raw == "" {
		respondBadRequest(c, "userId is required")
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid userId")
		return 0, false
	}
	return uint(id), true
}

// Upload ingests a CSV file of referenciales. The whole file is validated
// before anything is written: either every row is inserted or none is.
func (ic *ImportController) Upload(c *gin.Context) {
	userID, ok := resolveOwner(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "a CSV file is required in the 'file' field")
		return
	}
	if fileHeader.Size > maxUploadSize {
		respondBadRequest(c, "file too large (max 10 MB)")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondInternalError(c, err, "open uploaded file")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		respondInternalError(c, err, "read uploaded file")
		return
	}
	if len(raw) == 0 {
		respondBadRequest(c, "uploaded file is empty")
		return
	}

	delimiter := csvimport.DetectDelimiter(string(raw))

	records, err := csvimport.Parse(bytes.NewReader(raw), delimiter)
	if err != nil {
		c.JSON(http.StatusBadRequest, uploadErrorResponse{
			Error: fmt.Sprintf("CSV inválido: %v", err),
		})
		return
	}
	if len(records) == 0 {
		respondBadRequest(c, "el archivo no contiene filas de datos")
		return
	}

	if validationErrors := csvimport.Validate(records); len(validationErrors) > 0 {
		c.JSON(http.StatusBadRequest, uploadErrorResponse{
			Error:            "Errores de validación en el archivo",
			ValidationErrors: validationErrors,
		})
		return
	}

	count, err := ic.importer.Import(records, userID)
	if ic.auditor != nil {
		ic.auditor.LogImport(userID, fileHeader.Filename, count, err)
	}
	if err != nil {
		respondInternalError(c, err, "import CSV")
		return
	}

	c.JSON(http.StatusOK, uploadResponse{
		Success: true,
		Count:   count,
		Message: fmt.Sprintf("%d referenciales importados correctamente", count),
	})
}

// Template serves a downloadable CSV template with headers and one example
// row. `?delimiter=semicolon` produces the Excel-friendly variant.
func (ic *ImportController) Template(c *gin.Context) {
	delimiter := csvimport.TemplateComma
	switch c.DefaultQuery("delimiter", "comma") {
	case "comma":
	case "semicolon":
		delimiter = csvimport.TemplateSemicolon
	default:
		respondBadRequest(c, "delimiter must be 'comma' or 'semicolon'")
		return
	}

	body := csvimport.Template(delimiter)
	filename := csvimport.TemplateFilename(delimiter)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}

// Export streams every stored referencial as CSV in the import column
// order, so exported files can be re-imported unchanged.
func (ic *ImportController) Export(c *gin.Context) {
	refs, err := referenciales.NewRepository(ic.db.DB).ListAll()
	if err != nil {
		respondInternalError(c, err, "export CSV")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="referenciales.csv"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)

	if err := csvimport.Export(c.Writer, refs); err != nil {
		// Headers are already sent, nothing useful left to tell the client.
		log.Printf("CSV export failed: %v", err)
	}
}
