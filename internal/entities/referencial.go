package entities

import (
	"time"

	"gorm.io/gorm"
)

// Referencial is one recorded real-estate transaction: the registry folio
// that locates the deed, the parties, the property descriptors and the
// transaction facts, plus the coordinates used by the map.
type Referencial struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Registry folio locator (fojas/numero/anio identify the deed entry
	// in the conservador's ledger)
	Fojas  string `gorm:"size:20" json:"fojas"`
	Numero int    `json:"numero"`
	Anio   int    `gorm:"index" json:"anio"`
	CBR    string `gorm:"column:cbr;size:256" json:"cbr"`

	// Parties
	Comprador string `gorm:"size:256" json:"comprador"`
	Vendedor  string `gorm:"size:256" json:"vendedor"`

	// Property descriptors
	Predio     string  `gorm:"size:512" json:"predio"`
	Comuna     string  `gorm:"index;size:100" json:"comuna"`
	Rol        string  `gorm:"index;size:20" json:"rol"`
	Superficie float64 `json:"superficie"` // m2

	// Transaction facts
	FechaEscritura time.Time `gorm:"column:fechaescritura" json:"fechaescritura"`
	Monto          int64     `json:"monto"` // CLP

	// Geocoordinates; zero-valued until geocoded
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`

	Observaciones string `gorm:"type:text" json:"observaciones,omitempty"`

	UserID        uint        `gorm:"index" json:"user_id"`
	ConservadorID uint        `gorm:"index" json:"conservador_id"`
	User          User        `gorm:"foreignKey:UserID" json:"-"`
	Conservador   Conservador `gorm:"foreignKey:ConservadorID" json:"conservador,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// HasCoordinates reports whether the record carries usable map coordinates.
// (0,0) is treated as ungeocoded; it is in the Atlantic, not in Chile.
func (r Referencial) HasCoordinates() bool {
	if r.Lat == 0 && r.Lng == 0 {
		return false
	}
	return r.Lat >= -90 && r.Lat <= 90 && r.Lng >= -180 && r.Lng <= 180
}

// Conservador is a Chilean land-registry office (Conservador de Bienes
// Raíces). Referenciales reference exactly one; offices are created on
// demand during CSV import when the name is not yet known.
type Conservador struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Nombre    string    `gorm:"uniqueIndex;size:256" json:"nombre"`
	Comuna    string    `gorm:"size:100" json:"comuna"`
	Region    string    `gorm:"size:100" json:"region"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Referencial) TableName() string {
	return "referenciales"
}

func (Conservador) TableName() string {
	return "conservadores"
}
