package tasks

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/referenciales/referenciales/internal/database"
	"github.com/referenciales/referenciales/internal/database/referenciales"
	"github.com/referenciales/referenciales/internal/entities"
	"github.com/referenciales/referenciales/internal/geocoding"
)

type stubStrategy struct {
	result *geocoding.Result
	err    error
}

func (s stubStrategy) Name() string { return "stub" }

func (s stubStrategy) Geocode(ctx context.Context, rol, comuna string) (*geocoding.Result, error) {
	return s.result, s.err
}

func setupGeocodeTaskDB(t *testing.T) (*referenciales.Repository, func()) {
	t.Helper()
	dbPath := "./test_geocode_task_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return referenciales.NewRepository(db.DB), cleanup
}

func seedUngeocodedRef(t *testing.T, repo *referenciales.Repository) *entities.Referencial {
	t.Helper()
	ref := &entities.Referencial{
		Fojas:          "100",
		Numero:         1,
		Anio:           2023,
		CBR:            "CBR Santiago",
		Comprador:      "A",
		Vendedor:       "B",
		Predio:         "Predio",
		Comuna:         "Santiago",
		Rol:            "10-1",
		Superficie:     100,
		FechaEscritura: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		Monto:          50000000,
		UserID:         1,
	}
	require.NoError(t, repo.Create(ref))
	return ref
}

func TestGeocodeReferencialProcessor(t *testing.T) {
	ctx := context.Background()

	t.Run("stores resolved coordinates", func(t *testing.T) {
		repo, cleanup := setupGeocodeTaskDB(t)
		defer cleanup()
		ref := seedUngeocodedRef(t, repo)

		resolver := geocoding.NewResolver(stubStrategy{
			result: &geocoding.Result{Lat: -33.44, Lng: -70.66, Method: geocoding.MethodAPIGeocoding},
		})

		processor := GeocodeReferencialProcessor(repo, resolver)
		require.NoError(t, processor(ctx, GeocodeReferencialTask{ReferencialID: ref.ID}))

		got, err := repo.GetByID(ref.ID)
		require.NoError(t, err)
		assert.Equal(t, -33.44, got.Lat)
		assert.Equal(t, -70.66, got.Lng)
	})

	t.Run("no result completes without retry and leaves the record untouched", func(t *testing.T) {
		repo, cleanup := setupGeocodeTaskDB(t)
		defer cleanup()
		ref := seedUngeocodedRef(t, repo)

		resolver := geocoding.NewResolver() // empty chain always exhausts

		processor := GeocodeReferencialProcessor(repo, resolver)
		require.NoError(t, processor(ctx, GeocodeReferencialTask{ReferencialID: ref.ID}))

		got, err := repo.GetByID(ref.ID)
		require.NoError(t, err)
		assert.False(t, got.HasCoordinates())
	})

	t.Run("already geocoded record is skipped", func(t *testing.T) {
		repo, cleanup := setupGeocodeTaskDB(t)
		defer cleanup()
		ref := seedUngeocodedRef(t, repo)
		require.NoError(t, repo.UpdateCoordinates(ref.ID, -33.5, -70.7))

		resolver := geocoding.NewResolver(stubStrategy{
			result: &geocoding.Result{Lat: 1, Lng: 2},
		})

		processor := GeocodeReferencialProcessor(repo, resolver)
		require.NoError(t, processor(ctx, GeocodeReferencialTask{ReferencialID: ref.ID}))

		got, err := repo.GetByID(ref.ID)
		require.NoError(t, err)
		assert.Equal(t, -33.5, got.Lat, "existing coordinates are never overwritten")
	})

	t.Run("deleted record is a successful no-op", func(t *testing.T) {
		repo, cleanup := setupGeocodeTaskDB(t)
		defer cleanup()

		processor := GeocodeReferencialProcessor(repo, geocoding.NewResolver())
		assert.NoError(t, processor(ctx, GeocodeReferencialTask{ReferencialID: 99999}))
	})
}
