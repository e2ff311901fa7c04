package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/referenciales/referenciales/internal/database/referenciales"
	"github.com/referenciales/referenciales/internal/geocoding"
)

// GeocodeReferencialTask resolves coordinates for a single referencial
// that was imported without them.
type GeocodeReferencialTask struct {
	ReferencialID uint `json:"referencial_id"`
}

// Config returns the queue configuration for geocoding tasks.
func (t GeocodeReferencialTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "geocode_referencial",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// GeocodeReferencialProcessor creates a processor function for
// GeocodeReferencialTask. A rol that no strategy can resolve is not an
// error worth retrying; the task completes and the record stays
// ungeocoded until the backfill picks it up again.
func GeocodeReferencialProcessor(repo *referenciales.Repository, resolver *geocoding.Resolver) backlite.QueueProcessor[GeocodeReferencialTask] {
	return func(ctx context.Context, task GeocodeReferencialTask) error {
		ref, err := repo.GetByID(task.ReferencialID)
		if err != nil {
			if errors.Is(err, referenciales.ErrNotFound) {
				// Deleted since enqueue, nothing to do
				return nil
			}
			return fmt.Errorf("load referencial %d: %w", task.ReferencialID, err)
		}

		if ref.HasCoordinates() {
			return nil
		}

		result, err := resolver.Resolve(ctx, ref.Rol, ref.Comuna)
		if err != nil {
			if errors.Is(err, geocoding.ErrNoResult) || errors.Is(err, geocoding.ErrInvalidRol) {
				log.Printf("[TASK] Referencial %d (rol %s, %s): no coordinates found",
					task.ReferencialID, ref.Rol, ref.Comuna)
				return nil
			}
			return fmt.Errorf("geocode referencial %d: %w", task.ReferencialID, err)
		}

		if err := repo.UpdateCoordinates(ref.ID, result.Lat, result.Lng); err != nil {
			return fmt.Errorf("store coordinates for referencial %d: %w", task.ReferencialID, err)
		}

		log.Printf("[TASK] Geocoded referencial %d via %s: (%f, %f)",
			task.ReferencialID, result.Method, result.Lat, result.Lng)
		return nil
	}
}

// NewGeocodeReferencialQueue creates a backlite queue for geocoding tasks.
func NewGeocodeReferencialQueue(repo *referenciales.Repository, resolver *geocoding.Resolver) backlite.Queue {
	return backlite.NewQueue(GeocodeReferencialProcessor(repo, resolver))
}
