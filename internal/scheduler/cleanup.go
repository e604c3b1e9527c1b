// Package scheduler runs background maintenance. The only job today is the
// purchase-token sweeper: expired tokens are kept for a grace period for
// billing disputes, then hard-deleted. Reports and their verification logs
// are public-interest records and are never touched.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/dzuokumor/Civic-voice/internal/store"
)

// PurchaseRetention is how long an expired token stays queryable before the
// sweeper removes it.
const PurchaseRetention = 30 * 24 * time.Hour

type CleanupScheduler struct {
	store    *store.Store
	interval time.Duration
	running  bool
	mu       sync.Mutex
	stopChan chan struct{}
}

func NewCleanupScheduler(st *store.Store, interval time.Duration) *CleanupScheduler {
	if interval == 0 {
		interval = time.Hour
	}
	return &CleanupScheduler{
		store:    st,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (s *CleanupScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	log.Printf("[Cleanup] Sweeper started, interval %s", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *CleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		close(s.stopChan)
		s.running = false
	}
}

func (s *CleanupScheduler) sweep() {
	purged, err := s.store.PurgeExpiredPurchases(PurchaseRetention, time.Now().UTC())
	if err != nil {
		log.Printf("[Cleanup] Sweep failed: %v", err)
		return
	}
	if purged > 0 {
		log.Printf("[Cleanup] Purged %d expired purchase tokens", purged)
	}
}
