package csvimport

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/referenciales/referenciales/internal/database"
	"github.com/referenciales/referenciales/internal/entities"
)

func setupImporterTestDB(t *testing.T) (*database.Database, func()) {
	t.Helper()
	dbPath := "./test_importer_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

func TestImporter_Import(t *testing.T) {
	t.Run("imports all rows and attributes the user", func(t *testing.T) {
		db, cleanup := setupImporterTestDB(t)
		defer cleanup()

		r1 := validRecord()
		r2 := validRecord()
		r2["comuna"] = "Ñuñoa"
		r2["cbr"] = "CBR Ñuñoa"
		r2["rol"] = "555-1"

		count, err := NewImporter(db.DB).Import([]Record{r1, r2}, 42)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		var refs []entities.Referencial
		require.NoError(t, db.DB.Find(&refs).Error)
		require.Len(t, refs, 2)
		for _, ref := range refs {
			assert.Equal(t, uint(42), ref.UserID)
			assert.NotZero(t, ref.ConservadorID)
		}
	})

	t.Run("rows naming the same conservador share one office", func(t *testing.T) {
		db, cleanup := setupImporterTestDB(t)
		defer cleanup()

		r1 := validRecord()
		r2 := validRecord()
		r2["rol"] = "321-9"

		_, err := NewImporter(db.DB).Import([]Record{r1, r2}, 1)
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.DB.Model(&entities.Conservador{}).
			Where("nombre = ?", "CBR Santiago").Count(&count).Error)
		assert.Equal(t, int64(1), count)

		var refs []entities.Referencial
		require.NoError(t, db.DB.Find(&refs).Error)
		require.Len(t, refs, 2)
		assert.Equal(t, refs[0].ConservadorID, refs[1].ConservadorID)
	})

	t.Run("coercion failure rolls back the entire batch", func(t *testing.T) {
		db, cleanup := setupImporterTestDB(t)
		defer cleanup()

		good := validRecord()
		bad := validRecord()
		bad["monto"] = "not-a-number" // skipped Validate on purpose

		count, err := NewImporter(db.DB).Import([]Record{good, bad}, 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "row 2")
		assert.Zero(t, count)

		var total int64
		require.NoError(t, db.DB.Model(&entities.Referencial{}).Count(&total).Error)
		assert.Zero(t, total, "no rows from the failed batch should persist")
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		db, cleanup := setupImporterTestDB(t)
		defer cleanup()

		count, err := NewImporter(db.DB).Import(nil, 1)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("reuses a seeded conservador instead of duplicating it", func(t *testing.T) {
		db, cleanup := setupImporterTestDB(t)
		defer cleanup()

		var before int64
		require.NoError(t, db.DB.Model(&entities.Conservador{}).Count(&before).Error)
		require.NotZero(t, before, "database seeds known offices")

		record := validRecord() // names the seeded "CBR Santiago"
		_, err := NewImporter(db.DB).Import([]Record{record}, 1)
		require.NoError(t, err)

		var after int64
		require.NoError(t, db.DB.Model(&entities.Conservador{}).Count(&after).Error)
		assert.Equal(t, before, after)
	})
}
