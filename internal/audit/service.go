package audit

import (
	"encoding/json"
	"log"

	"github.com/referenciales/referenciales/internal/database/audit"
	"github.com/referenciales/referenciales/internal/entities"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	go func() {
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// LogImport records a CSV import, successful or not.
func (s *Service) LogImport(userID uint, description string, rowCount int, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventImport,
		Action:      "csv_import",
		Description: description,
		EntityType:  "referencial",
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"row_count": rowCount,
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogDelete records a referencial or user deletion.
func (s *Service) LogDelete(userID uint, entityType string, entityID uint, description string, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventDelete,
		Action:      entityType + "_delete",
		Description: description,
		EntityType:  entityType,
		EntityID:    &entityID,
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogGeocode records a geocoding resolution, including which method of
// the fallback chain produced the coordinates.
func (s *Service) LogGeocode(userID uint, rol, comuna, method string, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventGeocode,
		Action:      "geocode_" + method,
		Description: "Geocoded rol " + rol + " in " + comuna,
		EntityType:  "referencial",
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Action = "geocode"
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
