package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/referenciales/referenciales/internal/config"
	"github.com/referenciales/referenciales/internal/database/referenciales"
	"github.com/referenciales/referenciales/internal/tasks"
)

// GeocodeBackfillScheduler periodically sweeps the database for
// referenciales without coordinates and enqueues geocoding tasks for
// them. Imports never block on geocoding; this is the catch-up path.
type GeocodeBackfillScheduler struct {
	repo       *referenciales.Repository
	taskClient *tasks.Client
	cfg        config.GeocodeBackfill

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isSweeping bool
	cancelFunc context.CancelFunc
}

func NewGeocodeBackfillScheduler(repo *referenciales.Repository, taskClient *tasks.Client, cfg config.GeocodeBackfill) *GeocodeBackfillScheduler {
	return &GeocodeBackfillScheduler{
		repo:       repo,
		taskClient: taskClient,
		cfg:        cfg,
		cron:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if backfill is enabled.
func (s *GeocodeBackfillScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		log.Printf("Geocode backfill scheduler: disabled")
		return nil
	}

	if s.taskClient == nil {
		log.Printf("Geocode backfill scheduler: task queue not available, skipping")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.Schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Geocode backfill scheduler: started with schedule '%s' (batch size %d)",
		s.cfg.Schedule, s.cfg.BatchSize)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler.
func (s *GeocodeBackfillScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.cancelFunc = nil
	s.mu.Unlock()

	// Wait for in-flight sweeps outside the lock: a running sweep's
	// cleanup needs the mutex to record that it finished.
	ctx := s.cron.Stop()
	<-ctx.Done()

	log.Printf("Geocode backfill scheduler: stopped")
}

// RunNow triggers an immediate sweep.
func (s *GeocodeBackfillScheduler) RunNow() {
	go s.runSweep()
}

// IsRunning returns whether the scheduler is active.
func (s *GeocodeBackfillScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next sweep will occur.
func (s *GeocodeBackfillScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runSweep enqueues one geocoding task per ungeocoded referencial, up to
// the configured batch size.
func (s *GeocodeBackfillScheduler) runSweep() {
	s.mu.Lock()
	if s.isSweeping {
		s.mu.Unlock()
		log.Printf("Geocode backfill: skipped (sweep already in progress)")
		return
	}
	s.isSweeping = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSweeping = false
		s.mu.Unlock()
	}()

	batchSize := s.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}

	refs, err := s.repo.ListMissingCoordinates(batchSize)
	if err != nil {
		log.Printf("Geocode backfill: failed to list ungeocoded referenciales: %v", err)
		return
	}
	if len(refs) == 0 {
		return
	}

	enqueued := 0
	for _, ref := range refs {
		task := tasks.GeocodeReferencialTask{ReferencialID: ref.ID}
		if _, err := s.taskClient.Add(task).Save(); err != nil {
			log.Printf("Geocode backfill: failed to enqueue referencial %d: %v", ref.ID, err)
			continue
		}
		enqueued++
	}

	log.Printf("Geocode backfill: enqueued %d of %d ungeocoded referenciales", enqueued, len(refs))
}
