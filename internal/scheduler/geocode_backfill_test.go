package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/referenciales/referenciales/internal/config"
	"github.com/referenciales/referenciales/internal/database"
	"github.com/referenciales/referenciales/internal/database/referenciales"
	"github.com/referenciales/referenciales/internal/entities"
	"github.com/referenciales/referenciales/internal/tasks"
)

func setupBackfillTest(t *testing.T) (*referenciales.Repository, *tasks.Client, func()) {
	t.Helper()
	dbPath := "./test_backfill_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	taskCfg := tasks.DefaultConfig()
	taskCfg.Workers = 1
	client, err := tasks.NewClient(filepath.Join(t.TempDir(), "tasks.db"), taskCfg)
	require.NoError(t, err)

	cleanup := func() {
		client.Close()
		db.Close()
		os.Remove(dbPath)
	}
	return referenciales.NewRepository(db.DB), client, cleanup
}

func seedBackfillRef(t *testing.T, repo *referenciales.Repository, lat, lng float64) *entities.Referencial {
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
		Lat:            lat,
		Lng:            lng,
		UserID:         1,
	}
	require.NoError(t, repo.Create(ref))
	return ref
}

func enabledBackfillConfig() config.GeocodeBackfill {
	return config.GeocodeBackfill{
		Enabled:   true,
		Schedule:  "0 * * * *",
		BatchSize: 10,
	}
}

func TestGeocodeBackfillScheduler_Lifecycle(t *testing.T) {
	t.Run("disabled scheduler never starts", func(t *testing.T) {
		repo, client, cleanup := setupBackfillTest(t)
		defer cleanup()

		s := NewGeocodeBackfillScheduler(repo, client, config.GeocodeBackfill{Enabled: false})
		require.NoError(t, s.Start(context.Background()))
		assert.False(t, s.IsRunning())
		assert.Nil(t, s.GetNextRunTime())
	})

	t.Run("start and stop", func(t *testing.T) {
		repo, client, cleanup := setupBackfillTest(t)
		defer cleanup()

		s := NewGeocodeBackfillScheduler(repo, client, enabledBackfillConfig())
		require.NoError(t, s.Start(context.Background()))
		assert.True(t, s.IsRunning())
		require.NotNil(t, s.GetNextRunTime())

		s.Stop()
		assert.False(t, s.IsRunning())
	})

	t.Run("invalid schedule is rejected", func(t *testing.T) {
		repo, client, cleanup := setupBackfillTest(t)
		defer cleanup()

		cfg := enabledBackfillConfig()
		cfg.Schedule = "not a schedule"
		s := NewGeocodeBackfillScheduler(repo, client, cfg)
		assert.Error(t, s.Start(context.Background()))
	})

	t.Run("stop returns while a sweep is mid-flight", func(t *testing.T) {
		repo, client, cleanup := setupBackfillTest(t)
		defer cleanup()

		s := NewGeocodeBackfillScheduler(repo, client, enabledBackfillConfig())
		require.NoError(t, s.Start(context.Background()))

		s.mu.Lock()
		s.isSweeping = true
		s.mu.Unlock()

		done := make(chan struct{})
		go func() {
			s.Stop()
			close(done)
		}()

		// The sweep finishes while Stop is draining; its cleanup must
		// be able to take the mutex.
		go func() {
			time.Sleep(50 * time.Millisecond)
			s.mu.Lock()
			s.isSweeping = false
			s.mu.Unlock()
		}()

		select {
		case <-done:
		case <-time.After(3 * time.Second):
			t.Fatal("Stop did not return while a sweep was active")
		}
		assert.False(t, s.IsRunning())
	})
}

func TestGeocodeBackfillScheduler_Sweep(t *testing.T) {
	repo, client, cleanup := setupBackfillTest(t)
	defer cleanup()

	ungeocodedA := seedBackfillRef(t, repo, 0, 0)
	ungeocodedB := seedBackfillRef(t, repo, 0, 0)
	seedBackfillRef(t, repo, -33.44, -70.66) // already geocoded, must not be enqueued

	processed := make(chan uint, 4)
	client.Register(backlite.NewQueue(func(ctx context.Context, task tasks.GeocodeReferencialTask) error {
		processed <- task.ReferencialID
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	s := NewGeocodeBackfillScheduler(repo, client, enabledBackfillConfig())
	s.runSweep()

	got := map[uint]bool{}
	for i := 0; i < 2; i++ {
		select {
		case id := <-processed:
			got[id] = true
		case <-time.After(5 * time.Second):
			t.Fatal("enqueued geocode tasks were not processed in time")
		}
	}
	assert.True(t, got[ungeocodedA.ID])
	assert.True(t, got[ungeocodedB.ID])

	select {
	case id := <-processed:
		t.Fatalf("unexpected task for referencial %d", id)
	case <-time.After(200 * time.Millisecond):
	}
}
