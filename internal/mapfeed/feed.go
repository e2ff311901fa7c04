package mapfeed

import (
	"time"

	"github.com/referenciales/referenciales/internal/entities"
)

// Point is the public, sanitized representation of one referencial.
// It is built as an allow-list projection: every field is copied
// explicitly, so adding a sensitive column to the entity can never leak
// it here. userId, comprador and vendedor must never appear.
type Point struct {
	ID             uint    `json:"id"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	Fojas          string  `json:"fojas"`
	Numero         int     `json:"numero"`
	Anio           int     `json:"anio"`
	CBR            string  `json:"cbr"`
	Predio         string  `json:"predio"`
	Comuna         string  `json:"comuna"`
	Rol            string  `json:"rol"`
	FechaEscritura string  `json:"fechaescritura"`
	Superficie     float64 `json:"superficie"`
	Monto          string  `json:"monto"`
	Observaciones  string  `json:"observaciones,omitempty"`
}

// Center is the default map viewport center.
type Center struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Metadata accompanies every feed response.
type Metadata struct {
	Total       int    `json:"total"`
	Timestamp   string `json:"timestamp"`
	Center      Center `json:"center"`
	DefaultZoom int    `json:"defaultZoom"`
}

// Project maps one stored referencial to its public point. Field by
// field, never a struct copy.
func Project(ref entities.Referencial) Point {
	return Point{
		ID:             ref.ID,
		Lat:            ref.Lat,
		Lng:            ref.Lng,
		Fojas:          ref.Fojas,
		Numero:         ref.Numero,
		Anio:           ref.Anio,
		CBR:            ref.CBR,
		Predio:         ref.Predio,
		Comuna:         ref.Comuna,
		Rol:            ref.Rol,
		FechaEscritura: FormatFecha(ref.FechaEscritura),
		Superficie:     ref.Superficie,
		Monto:          FormatCLP(ref.Monto),
		Observaciones:  ref.Observaciones,
	}
}

// ProjectAll converts a query result into feed points plus metadata.
func ProjectAll(refs []entities.Referencial, center Center, defaultZoom int) ([]Point, Metadata) {
	points := make([]Point, 0, len(refs))
	for _, ref := range refs {
		points = append(points, Project(ref))
	}

	meta := Metadata{
		Total:       len(points),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Center:      center,
		DefaultZoom: defaultZoom,
	}
	return points, meta
}
