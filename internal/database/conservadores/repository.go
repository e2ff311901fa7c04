package conservadores

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/referenciales/referenciales/internal/entities"
)

var ErrNotFound = errors.New("conservador not found")

// Repository provides data access for registry offices.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(id uint) (*entities.Conservador, error) {
	var c entities.Conservador
	err := r.db.First(&c, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *Repository) GetByNombre(nombre string) (*entities.Conservador, error) {
	var c entities.Conservador
	err := r.db.Where("nombre = ?", nombre).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *Repository) GetAll() ([]entities.Conservador, error) {
	var cs []entities.Conservador
	err := r.db.Order("nombre ASC").Find(&cs).Error
	return cs, err
}

// ResolveOrCreate returns the conservador with the given name, creating it
// when absent. The lookup is an upsert on the unique name index, so two
// concurrent imports resolving the same office cannot both create it.
// Comuna defaults from the calling row; region is filled in later by hand.
func ResolveOrCreate(tx *gorm.DB, nombre, comuna string) (*entities.Conservador, error) {
	nombre = strings.TrimSpace(nombre)
	if nombre == "" {
		return nil, fmt.Errorf("conservador name is empty")
	}

	c := entities.Conservador{
		Nombre: nombre,
		Comuna: strings.TrimSpace(comuna),
		Region: "Por determinar",
	}

	// ON CONFLICT (nombre) DO NOTHING, then re-read; the existing row wins
	// and keeps whatever comuna/region it already had.
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "nombre"}},
		DoNothing: true,
	}).Create(&c).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert conservador %q: %w", nombre, err)
	}

	var resolved entities.Conservador
	if err := tx.Where("nombre = ?", nombre).First(&resolved).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve conservador %q: %w", nombre, err)
	}
	return &resolved, nil
}

func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Conservador{}).Count(&count).Error
	return count, err
}
