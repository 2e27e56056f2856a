package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/specter/internal/console/store"
)

// Purger drops expired cache entries. *cache.Memory satisfies it.
type Purger interface {
	Purge() int
}

// HousekeepingService periodically deletes expired access tokens and purges
// expired response cache entries.
type HousekeepingService struct {
	Store    store.Store
	Cache    Purger
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService defaults a non-positive interval to one hour.
func NewHousekeepingService(store store.Store, cache Purger, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Cache:    cache,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the cleanup loop in the background. Call Stop to end it.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until an in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one pass. Each step is independent; a failure in one does not
// stop the other.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	s.Logger.Debug("starting housekeeping cleanup")

	n, err := s.Store.Tokens().DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		s.Logger.Error("failed to delete expired access tokens", "error", err)
	} else if n > 0 {
		s.Logger.Info("deleted expired access tokens", "count", n)
	}

	if s.Cache != nil {
		if purged := s.Cache.Purge(); purged > 0 {
			s.Logger.Debug("purged expired cache entries", "count", purged)
		}
	}
}
