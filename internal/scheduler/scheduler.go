package scheduler

import (
	"fmt"
	"log"

	"realty-catalog/internal/archive"
	"realty-catalog/internal/catalog"
	"realty-catalog/internal/config"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the daily archive snapshot job.
type Scheduler struct {
	cron        *cron.Cron
	store       *catalog.Store
	snapshotter *archive.Snapshotter
	config      *config.Config
	isRunning   bool
}

// NewScheduler creates a scheduler snapshotting the given store into the
// given archive.
func NewScheduler(store *catalog.Store, arch archive.Archive, cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		store:       store,
		snapshotter: archive.NewSnapshotter(arch),
		config:      cfg,
	}
}

// Start registers the daily job and starts the cron loop.
func (s *Scheduler) Start() error {
	if !s.config.Snapshot.DailyRunEnabled {
		log.Println("Scheduler: Daily snapshot is disabled in configuration")
		return nil
	}

	cronSpec := parseDailyRunTime(s.config.Snapshot.DailyRunTime)

	_, err := s.cron.AddFunc(cronSpec, func() {
		log.Println("Scheduler: Starting daily snapshot job...")
		saved, failed := s.RunNow()
		log.Printf("Scheduler: Daily snapshot completed: %d saved, %d failed", saved, failed)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Scheduler: Started with daily snapshot at %s (cron: %s)", s.config.Snapshot.DailyRunTime, cronSpec)

	return nil
}

// Stop stops the cron loop.
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		log.Println("Scheduler: Stopped")
	}
}

// RunNow snapshots the entire catalog immediately.
func (s *Scheduler) RunNow() (saved, failed int) {
	return s.snapshotter.Run(s.store.Snapshot())
}

// parseDailyRunTime converts HH:MM format to cron specification
// Example: "02:00" -> "0 2 * * *" (run at 2:00 AM every day)
func parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 && hour >= 0 && hour < 24 && minute >= 0 && minute < 60 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}
	// Fall back to 2:00 AM on unparsable input
	return "0 2 * * *"
}
