package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mkarlsen/divelog/internal/services"
)

// PhotoRescanScheduler periodically rescans the configured photo
// directories so new images show up without a manual scan request.
type PhotoRescanScheduler struct {
	photos   *services.PhotoService
	paths    []string
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewPhotoRescanScheduler creates a new scheduler instance
func NewPhotoRescanScheduler(photos *services.PhotoService, paths []string, schedule string) *PhotoRescanScheduler {
	return &PhotoRescanScheduler{
		photos:   photos,
		paths:    paths,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if photo directories are configured
func (s *PhotoRescanScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if len(s.paths) == 0 {
		log.Printf("Photo rescan scheduler: no photo directories configured, skipping")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runRescan()
	})
	if err != nil {
		return fmt.Errorf("invalid rescan schedule '%s': %w", s.schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Photo rescan scheduler: started with schedule '%s'", s.schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *PhotoRescanScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Photo rescan scheduler: stopped")
}

// RunNow triggers an immediate rescan
func (s *PhotoRescanScheduler) RunNow() {
	go s.runRescan()
}

// IsRunning returns whether the scheduler is active
func (s *PhotoRescanScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next rescan will occur
func (s *PhotoRescanScheduler) GetNextRunTime() *time.Time {
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

func (s *PhotoRescanScheduler) runRescan() {
	log.Printf("Photo rescan: scanning %d directories", len(s.paths))
	startTime := time.Now()

	result, err := s.photos.ScanAndGroup(s.paths, 0, 0)
	if err != nil {
		log.Printf("Photo rescan: failed: %v", err)
		return
	}

	for _, scanErr := range result.Errors {
		log.Printf("Photo rescan: warning - %s", scanErr)
	}

	log.Printf("Photo rescan: stored %d photos in %v",
		result.PhotosScanned, time.Since(startTime).Round(time.Millisecond))
}
