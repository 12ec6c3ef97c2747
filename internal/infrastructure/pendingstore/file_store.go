// Package pendingstore implements the pending-offer store as an in-memory
// map with a JSON file behind it. The map is the source of truth while the
// process runs; the file only survives restarts. Offers past the retention
// window are dropped on load and by a periodic cleanup pass.
package pendingstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/offerflow/backend/internal/domain/offer"
	"github.com/offerflow/backend/internal/infrastructure/config"
)

// FileStore implements offer.PendingStore
type FileStore struct {
	mu     sync.RWMutex
	offers map[uuid.UUID]*offer.Offer

	filePath  string
	retention time.Duration
	interval  time.Duration
	logger    *zap.Logger

	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New loads the store from its backing file and starts the cleanup
// goroutine. A missing file means an empty store; a corrupt file is an
// error so a broken backup never silently drops pending offers.
func New(cfg config.StoreConfig, logger *zap.Logger) (*FileStore, error) {
	s := &FileStore{
		offers:    make(map[uuid.UUID]*offer.Offer),
		filePath:  cfg.FilePath,
		retention: cfg.Retention,
		interval:  cfg.CleanupInterval,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s, nil
}

// Put inserts or replaces an offer. A deep copy is stored so later caller
// mutations never leak into the store.
func (s *FileStore) Put(ctx context.Context, o *offer.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.offers[o.ID] = o.Clone()
	return s.persist()
}

// Get returns a copy of the stored offer
func (s *FileStore) Get(ctx context.Context, id uuid.UUID) (*offer.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.offers[id]
	if !ok {
		return nil, offer.ErrNotFound
	}
	return o.Clone(), nil
}

// List returns copies of all stored offers, oldest first
func (s *FileStore) List(ctx context.Context) ([]*offer.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	offers := make([]*offer.Offer, 0, len(s.offers))
	for _, o := range s.offers {
		offers = append(offers, o.Clone())
	}
	sort.Slice(offers, func(i, j int) bool {
		return offers[i].CreatedAt.Before(offers[j].CreatedAt)
	})
	return offers, nil
}

// Delete removes an offer
func (s *FileStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.offers[id]; !ok {
		return offer.ErrNotFound
	}
	delete(s.offers, id)
	return s.persist()
}

// TransitionStatus atomically moves an offer between statuses. The check
// and the write happen under one lock, so of two concurrent callers
// expecting the same from status exactly one succeeds and the other gets
// ErrStatusConflict.
func (s *FileStore) TransitionStatus(ctx context.Context, id uuid.UUID, from, to offer.Status) (*offer.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.offers[id]
	if !ok {
		return nil, offer.ErrNotFound
	}
	if o.Status != from {
		return nil, fmt.Errorf("%w: offer is %s, expected %s", offer.ErrStatusConflict, o.Status, from)
	}
	if !from.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", offer.ErrInvalidTransition, from, to)
	}

	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	if err := s.persist(); err != nil {
		return nil, err
	}
	return o.Clone(), nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *FileStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// load hydrates the map from the backing file and drops expired offers
func (s *FileStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("pendingstore: failed to read %s: %w", s.filePath, err)
	}
	if len(data) == 0 {
		return nil
	}

	var offers []*offer.Offer
	if err := json.Unmarshal(data, &offers); err != nil {
		return fmt.Errorf("pendingstore: corrupt backup file %s: %w", s.filePath, err)
	}

	cutoff := time.Now().Add(-s.retention)
	expired := 0
	for _, o := range offers {
		if o.CreatedAt.Before(cutoff) {
			expired++
			continue
		}
		s.offers[o.ID] = o
	}
	if expired > 0 {
		s.logger.Info("dropped expired pending offers on load",
			zap.Int("expired", expired),
			zap.Int("loaded", len(s.offers)),
		)
	}
	return nil
}

// persist writes the full store to the backing file. The write goes to a
// temp file first and is renamed into place so a crash mid-write never
// truncates the previous backup. Callers hold the write lock.
func (s *FileStore) persist() error {
	offers := make([]*offer.Offer, 0, len(s.offers))
	for _, o := range s.offers {
		offers = append(offers, o)
	}
	sort.Slice(offers, func(i, j int) bool {
		return offers[i].CreatedAt.Before(offers[j].CreatedAt)
	})

	data, err := json.MarshalIndent(offers, "", "  ")
	if err != nil {
		return fmt.Errorf("pendingstore: failed to encode offers: %w", err)
	}

	dir := filepath.Dir(s.filePath)
	tmp, err := os.CreateTemp(dir, ".pending_offers-*.tmp")
	if err != nil {
		return fmt.Errorf("pendingstore: failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("pendingstore: failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("pendingstore: failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.filePath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("pendingstore: failed to replace backup file: %w", err)
	}
	return nil
}

// cleanupLoop periodically drops offers past the retention window
func (s *FileStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup removes expired offers and persists if anything changed
func (s *FileStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.retention)
	expired := 0
	for id, o := range s.offers {
		if o.CreatedAt.Before(cutoff) {
			delete(s.offers, id)
			expired++
		}
	}
	if expired == 0 {
		return
	}
	if err := s.persist(); err != nil {
		s.logger.Error("failed to persist after cleanup", zap.Error(err))
		return
	}
	s.logger.Info("dropped expired pending offers", zap.Int("expired", expired))
}

// Ensure FileStore implements the port
var _ offer.PendingStore = (*FileStore)(nil)
