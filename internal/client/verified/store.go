// Package verified caches the outcome of successful key verifications so a
// recipient does not retype the key between verifying and downloading. The
// cache holds key material in memory only and evicts each entry once its
// file has been unlockable for longer than the retention window.
package verified

import (
	"context"
	"sync"
	"time"

	"github.com/securechain/securechain/internal/common"
	"github.com/securechain/securechain/internal/cryptox"
)

// Entry is one verified key with the access parameters learned during
// verification.
type Entry struct {
	KeyHex     string
	Algorithm  cryptox.Algorithm
	UnlockTime time.Time
	VerifiedAt time.Time
}

// expired reports whether the entry has outlived its retention: the file has
// been unlockable for more than the retention window, so keeping the key
// around serves no purpose.
func (e *Entry) expired(now time.Time, retention time.Duration) bool {
	return now.Sub(e.UnlockTime) > retention
}

// Store is a concurrency-safe in-memory cache of verified keys, indexed by
// fileId.
type Store struct {
	mu        sync.Mutex
	entries   map[string]*Entry
	retention time.Duration
	now       func() time.Time
}

func NewStore() *Store {
	return &Store{
		entries:   make(map[string]*Entry),
		retention: common.VerificationRetention,
		now:       time.Now,
	}
}

// Put records a successful verification.
func (s *Store) Put(fileID string, e *Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.VerifiedAt = s.now()
	s.entries[fileID] = e
}

// Get returns the cached entry for a fileId, sweeping expired entries first
// so a stale key can never be handed out.
func (s *Store) Get(fileID string) (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	e, ok := s.entries[fileID]
	return e, ok
}

// Delete drops a single entry, wiping nothing else.
func (s *Store) Delete(fileID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, fileID)
}

// Len reports the live entry count after a sweep.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	return len(s.entries)
}

func (s *Store) sweepLocked() {
	now := s.now()
	for id, e := range s.entries {
		if e.expired(now, s.retention) {
			delete(s.entries, id)
		}
	}
}

// StartSweeper runs periodic sweeps until the context is cancelled, so
// expired keys leave memory even if the store is never read again.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.mu.Lock()
				s.sweepLocked()
				s.mu.Unlock()
			case <-ctx.Done():
				return
			}
		}
	}()
}
