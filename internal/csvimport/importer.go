package csvimport

import (
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/referenciales/referenciales/internal/database/conservadores"
	"github.com/referenciales/referenciales/internal/entities"
)

// Importer persists validated CSV records. The whole file is one atomic
// batch: a failure on any row rolls back every insert and every
// conservador created on the way, so no orphan offices or dangling
// references survive a partial failure.
type Importer struct {
	db *gorm.DB
}

func NewImporter(db *gorm.DB) *Importer {
	return &Importer{db: db}
}

// Import inserts one referencial per record, resolving or creating the
// conservador each row names. Records must already have passed Validate;
// coercion errors here are treated as hard failures, not row skips.
// Returns the number of rows persisted.
func (im *Importer) Import(records []Record, userID uint) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	count := 0
	err := im.db.Transaction(func(tx *gorm.DB) error {
		for i, record := range records {
			ref, err := recordToReferencial(record, userID)
			if err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}

			conservador, err := conservadores.ResolveOrCreate(tx, record["cbr"], record["comuna"])
			if err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
			ref.ConservadorID = conservador.ID

			if err := tx.Create(ref).Error; err != nil {
				return fmt.Errorf("row %d: failed to insert referencial: %w", i+1, err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

// recordToReferencial coerces the raw string fields into their typed
// counterparts. Validate has already vetted the values, so errors here
// indicate the validator and the importer disagree — a bug, surfaced
// loudly rather than skipped.
func recordToReferencial(record Record, userID uint) (*entities.Referencial, error) {
	lat, err := parseFloat(record["lat"])
	if err != nil {
		return nil, fmt.Errorf("invalid lat %q: %w", record["lat"], err)
	}
	lng, err := parseFloat(record["lng"])
	if err != nil {
		return nil, fmt.Errorf("invalid lng %q: %w", record["lng"], err)
	}
	numero, err := strconv.Atoi(record["numero"])
	if err != nil {
		return nil, fmt.Errorf("invalid numero %q: %w", record["numero"], err)
	}
	anio, err := strconv.Atoi(record["anio"])
	if err != nil {
		return nil, fmt.Errorf("invalid anio %q: %w", record["anio"], err)
	}
	superficie, err := parseFloat(record["superficie"])
	if err != nil {
		return nil, fmt.Errorf("invalid superficie %q: %w", record["superficie"], err)
	}
	monto, err := strconv.ParseInt(record["monto"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid monto %q: %w", record["monto"], err)
	}
	fecha, err := ParseFecha(record["fechaescritura"])
	if err != nil {
		return nil, fmt.Errorf("invalid fechaescritura %q: %w", record["fechaescritura"], err)
	}

	return &entities.Referencial{
		Fojas:          record["fojas"],
		Numero:         numero,
		Anio:           anio,
		CBR:            record["cbr"],
		Comprador:      record["comprador"],
		Vendedor:       record["vendedor"],
		Predio:         record["predio"],
		Comuna:         record["comuna"],
		Rol:            record["rol"],
		Superficie:     superficie,
		FechaEscritura: fecha,
		Monto:          monto,
		Lat:            lat,
		Lng:            lng,
		Observaciones:  record["observaciones"],
		UserID:         userID,
	}, nil
}
