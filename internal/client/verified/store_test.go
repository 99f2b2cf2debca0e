package verified

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/securechain/securechain/internal/cryptox"
	"github.com/stretchr/testify/assert"
)

func newTestStore(now time.Time) (*Store, *time.Time) {
	clock := now
	s := NewStore()
	s.now = func() time.Time { return clock }
	return s, &clock
}

func TestStore_PutGet(t *testing.T) {
	s, _ := newTestStore(time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC))

	s.Put("0xfile", &Entry{
		KeyHex:     "aa11",
		Algorithm:  cryptox.AlgorithmAES256GCM,
		UnlockTime: time.Date(2026, 1, 2, 13, 0, 0, 0, time.UTC),
	})

	e, ok := s.Get("0xfile")
	assert.True(t, ok)
	assert.Equal(t, "aa11", e.KeyHex)
	assert.Equal(t, cryptox.AlgorithmAES256GCM, e.Algorithm)
}

func TestStore_EntrySurvivesWhileLocked(t *testing.T) {
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	s, clock := newTestStore(now)

	// Unlocks in 48h; even far in the future the entry must stay while the
	// lock is active.
	s.Put("0xfile", &Entry{KeyHex: "aa11", UnlockTime: now.Add(48 * time.Hour)})

	*clock = now.Add(47 * time.Hour)
	_, ok := s.Get("0xfile")
	assert.True(t, ok)
}

func TestStore_EntryEvictedAfterRetention(t *testing.T) {
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	s, clock := newTestStore(now)

	unlock := now.Add(time.Hour)
	s.Put("0xfile", &Entry{KeyHex: "aa11", UnlockTime: unlock})

	// Within retention of the unlock time: still cached.
	*clock = unlock.Add(23 * time.Hour)
	_, ok := s.Get("0xfile")
	assert.True(t, ok)

	// Past retention: gone.
	*clock = unlock.Add(24*time.Hour + time.Second)
	_, ok = s.Get("0xfile")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestStore_SweepIsPerEntry(t *testing.T) {
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	s, clock := newTestStore(now)

	s.Put("0xold", &Entry{KeyHex: "aa", UnlockTime: now.Add(-30 * time.Hour)})
	s.Put("0xfresh", &Entry{KeyHex: "bb", UnlockTime: now.Add(-time.Hour)})

	*clock = now

	_, ok := s.Get("0xold")
	assert.False(t, ok)
	_, ok = s.Get("0xfresh")
	assert.True(t, ok)
}

func TestStore_SweeperPurgesIdleEntries(t *testing.T) {
	start := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	var clockMu sync.Mutex
	now := start
	s := NewStore()
	s.now = func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		return now
	}

	// Already past retention when inserted; nothing touches the store after
	// this, so only the timer can evict it.
	s.Put("0xfile", &Entry{KeyHex: "aa11", UnlockTime: start.Add(-48 * time.Hour)})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.StartSweeper(ctx, 5*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		resident := len(s.entries)
		s.mu.Unlock()
		if resident == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expired entry still resident without access; sweeper never evicted it")
}

func TestStore_Delete(t *testing.T) {
	s, _ := newTestStore(time.Now())

	s.Put("0xfile", &Entry{KeyHex: "aa11", UnlockTime: time.Now().Add(time.Hour)})
	s.Delete("0xfile")

	_, ok := s.Get("0xfile")
	assert.False(t, ok)
}
