package referenciales

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/referenciales/referenciales/internal/entities"
)

var ErrNotFound = errors.New("referencial not found")

// Filters narrows List queries. Zero values mean "no filter".
type Filters struct {
	Comuna string
	Anio   int
	UserID uint
	Limit  int
	Offset int
}

// Repository provides data access for referenciales.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ref *entities.Referencial) error {
	if err := r.db.Create(ref).Error; err != nil {
		return fmt.Errorf("failed to create referencial: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(id uint) (*entities.Referencial, error) {
	var ref entities.Referencial
	err := r.db.Preload("Conservador").First(&ref, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ref, nil
}

func (r *Repository) Update(ref *entities.Referencial) error {
	return r.db.Save(ref).Error
}

func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.Referencial{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns referenciales matching the filters, newest first.
func (r *Repository) List(f Filters) ([]entities.Referencial, int64, error) {
	query := r.db.Model(&entities.Referencial{})

	if f.Comuna != "" {
		query = query.Where("LOWER(comuna) = LOWER(?)", f.Comuna)
	}
	if f.Anio != 0 {
		query = query.Where("anio = ?", f.Anio)
	}
	if f.UserID != 0 {
		query = query.Where("user_id = ?", f.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}
	if f.Offset > 0 {
		query = query.Offset(f.Offset)
	}

	var refs []entities.Referencial
	err := query.Preload("Conservador").Order("created_at DESC").Find(&refs).Error
	return refs, total, err
}

// ListWithCoordinates returns records carrying range-valid, non-zero
// coordinates; this is the map feed's source query.
func (r *Repository) ListWithCoordinates(comuna string, anio, limit int) ([]entities.Referencial, error) {
	query := r.db.Model(&entities.Referencial{}).
		Where("NOT (lat = 0 AND lng = 0)").
		Where("lat BETWEEN -90 AND 90").
		Where("lng BETWEEN -180 AND 180")

	if comuna != "" {
		query = query.Where("LOWER(comuna) = LOWER(?)", comuna)
	}
	if anio != 0 {
		query = query.Where("anio = ?", anio)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var refs []entities.Referencial
	err := query.Order("fechaescritura DESC").Find(&refs).Error
	return refs, err
}

// ListMissingCoordinates returns records the geocode backfill should visit.
func (r *Repository) ListMissingCoordinates(limit int) ([]entities.Referencial, error) {
	var refs []entities.Referencial
	query := r.db.Where("lat = 0 AND lng = 0").Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&refs).Error
	return refs, err
}

// UpdateCoordinates persists geocoding output on an existing record.
func (r *Repository) UpdateCoordinates(id uint, lat, lng float64) error {
	result := r.db.Model(&entities.Referencial{}).Where("id = ?", id).Updates(map[string]any{
		"lat": lat,
		"lng": lng,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByUser reports how many referenciales a user owns. Used to block
// deletion of users that still own records.
func (r *Repository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Referencial{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *Repository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Referencial{}).Count(&count).Error
	return count, err
}

// ListAll returns every referencial, for CSV export. Conservador is
// preloaded so the export can render the office name.
func (r *Repository) ListAll() ([]entities.Referencial, error) {
	var refs []entities.Referencial
	err := r.db.Preload("Conservador").Order("id ASC").Find(&refs).Error
	return refs, err
}
