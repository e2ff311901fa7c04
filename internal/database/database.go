package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/referenciales/referenciales/internal/entities"
)

var defaultConservadores = []entities.Conservador{
	{Nombre: "CBR Santiago", Comuna: "Santiago", Region: "Metropolitana"},
	{Nombre: "CBR Valparaíso", Comuna: "Valparaíso", Region: "Valparaíso"},
	{Nombre: "CBR Concepción", Comuna: "Concepción", Region: "Biobío"},
	{Nombre: "CBR La Serena", Comuna: "La Serena", Region: "Coquimbo"},
	{Nombre: "CBR Temuco", Comuna: "Temuco", Region: "La Araucanía"},
	{Nombre: "CBR Puerto Montt", Comuna: "Puerto Montt", Region: "Los Lagos"},
}

// Database is the process-wide handle over the shared connection pool.
// Construct it once at startup and inject it; never re-open per request.
type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.User{},
		&entities.Conservador{},
		&entities.Referencial{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	// Seed a starting catalog of registry offices
	if err := database.seedConservadores(); err != nil {
		return nil, fmt.Errorf("failed to seed conservadores: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) seedConservadores() error {
	for _, c := range defaultConservadores {
		var existing entities.Conservador
		result := d.DB.Where("nombre = ?", c.Nombre).First(&existing)
		if result.Error == gorm.ErrRecordNotFound {
			if err := d.DB.Create(&c).Error; err != nil {
				return fmt.Errorf("failed to create conservador %s: %w", c.Nombre, err)
			}
			log.Printf("Created conservador: %s", c.Nombre)
		}
	}
	return nil
}
