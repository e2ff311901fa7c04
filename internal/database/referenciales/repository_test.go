package referenciales

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/referenciales/referenciales/internal/database"
	"github.com/referenciales/referenciales/internal/entities"
)

func setupTestRepo(t *testing.T) (*Repository, *database.Database, func()) {
	t.Helper()
	dbPath := "./test_refs_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return NewRepository(db.DB), db, cleanup
}

func newRef(comuna string, anio int, userID uint, lat, lng float64) *entities.Referencial {
	return &entities.Referencial{
		Fojas:          "100",
		Numero:         1,
		Anio:           anio,
		CBR:            "CBR " + comuna,
		Comprador:      "Comprador",
		Vendedor:       "Vendedor",
		Predio:         "Predio en " + comuna,
		Comuna:         comuna,
		Rol:            "10-1",
		Superficie:     100,
		FechaEscritura: time.Date(anio, 6, 1, 0, 0, 0, 0, time.UTC),
		Monto:          50000000,
		Lat:            lat,
		Lng:            lng,
		UserID:         userID,
	}
}

func TestRepository_CRUD(t *testing.T) {
	repo, _, cleanup := setupTestRepo(t)
	defer cleanup()

	ref := newRef("Santiago", 2022, 1, -33.44, -70.66)
	require.NoError(t, repo.Create(ref))
	require.NotZero(t, ref.ID)

	t.Run("GetByID finds the record", func(t *testing.T) {
		got, err := repo.GetByID(ref.ID)
		require.NoError(t, err)
		assert.Equal(t, "Santiago", got.Comuna)
	})

	t.Run("GetByID unknown id returns ErrNotFound", func(t *testing.T) {
		_, err := repo.GetByID(99999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Update persists changes", func(t *testing.T) {
		ref.Predio = "Predio actualizado"
		require.NoError(t, repo.Update(ref))

		got, err := repo.GetByID(ref.ID)
		require.NoError(t, err)
		assert.Equal(t, "Predio actualizado", got.Predio)
	})

	t.Run("Delete removes the record", func(t *testing.T) {
		require.NoError(t, repo.Delete(ref.ID))
		_, err := repo.GetByID(ref.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Delete unknown id returns ErrNotFound", func(t *testing.T) {
		assert.ErrorIs(t, repo.Delete(99999), ErrNotFound)
	})
}

func TestRepository_List(t *testing.T) {
	repo, _, cleanup := setupTestRepo(t)
	defer cleanup()

	require.NoError(t, repo.Create(newRef("Santiago", 2022, 1, -33.44, -70.66)))
	require.NoError(t, repo.Create(newRef("Santiago", 2023, 2, -33.45, -70.67)))
	require.NoError(t, repo.Create(newRef("Providencia", 2023, 1, 0, 0)))

	t.Run("no filters returns everything with total", func(t *testing.T) {
		refs, total, err := repo.List(Filters{})
		require.NoError(t, err)
		assert.Len(t, refs, 3)
		assert.Equal(t, int64(3), total)
	})

	t.Run("comuna filter is case-insensitive", func(t *testing.T) {
		refs, total, err := repo.List(Filters{Comuna: "santiago"})
		require.NoError(t, err)
		assert.Len(t, refs, 2)
		assert.Equal(t, int64(2), total)
	})

	t.Run("anio filter", func(t *testing.T) {
		refs, _, err := repo.List(Filters{Anio: 2023})
		require.NoError(t, err)
		assert.Len(t, refs, 2)
	})

	t.Run("pagination keeps the unpaginated total", func(t *testing.T) {
		refs, total, err := repo.List(Filters{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, refs, 2)
		assert.Equal(t, int64(3), total)

		rest, _, err := repo.List(Filters{Limit: 2, Offset: 2})
		require.NoError(t, err)
		assert.Len(t, rest, 1)
	})

	t.Run("user filter", func(t *testing.T) {
		refs, _, err := repo.List(Filters{UserID: 1})
		require.NoError(t, err)
		assert.Len(t, refs, 2)
	})
}

func TestRepository_Coordinates(t *testing.T) {
	repo, _, cleanup := setupTestRepo(t)
	defer cleanup()

	geocoded := newRef("Santiago", 2022, 1, -33.44, -70.66)
	ungeocoded := newRef("Santiago", 2022, 1, 0, 0)
	outOfRange := newRef("Santiago", 2022, 1, 95, -70.66)
	require.NoError(t, repo.Create(geocoded))
	require.NoError(t, repo.Create(ungeocoded))
	require.NoError(t, repo.Create(outOfRange))

	t.Run("ListWithCoordinates skips zero and out-of-range points", func(t *testing.T) {
		refs, err := repo.ListWithCoordinates("", 0, 0)
		require.NoError(t, err)
		require.Len(t, refs, 1)
		assert.Equal(t, geocoded.ID, refs[0].ID)
	})

	t.Run("ListWithCoordinates honors the limit", func(t *testing.T) {
		require.NoError(t, repo.Create(newRef("Santiago", 2023, 1, -33.5, -70.7)))
		refs, err := repo.ListWithCoordinates("", 0, 1)
		require.NoError(t, err)
		assert.Len(t, refs, 1)
	})

	t.Run("ListMissingCoordinates returns only zero points", func(t *testing.T) {
		refs, err := repo.ListMissingCoordinates(0)
		require.NoError(t, err)
		require.Len(t, refs, 1)
		assert.Equal(t, ungeocoded.ID, refs[0].ID)
	})

	t.Run("UpdateCoordinates moves a record onto the map", func(t *testing.T) {
		require.NoError(t, repo.UpdateCoordinates(ungeocoded.ID, -33.46, -70.68))

		refs, err := repo.ListMissingCoordinates(0)
		require.NoError(t, err)
		assert.Empty(t, refs)
	})

	t.Run("UpdateCoordinates unknown id returns ErrNotFound", func(t *testing.T) {
		assert.ErrorIs(t, repo.UpdateCoordinates(99999, 1, 1), ErrNotFound)
	})
}

func TestRepository_Counts(t *testing.T) {
	repo, _, cleanup := setupTestRepo(t)
	defer cleanup()

	require.NoError(t, repo.Create(newRef("Santiago", 2022, 7, -33.44, -70.66)))
	require.NoError(t, repo.Create(newRef("Santiago", 2023, 7, 0, 0)))
	require.NoError(t, repo.Create(newRef("Providencia", 2023, 8, 0, 0)))

	byUser, err := repo.CountByUser(7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), byUser)

	all, err := repo.CountAll()
	require.NoError(t, err)
	assert.Equal(t, int64(3), all)
}
