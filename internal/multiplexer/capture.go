package multiplexer

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"claude-commander/internal/session"
)

// DefaultCaptureTTL is how long a cached pane snapshot stays fresh.
const DefaultCaptureTTL = 50 * time.Millisecond

// scrollbackLines is how far back captures reach into pane history.
const scrollbackLines = -1000

// Snapshot is a point-in-time copy of a pane's text with a content hash for
// cheap change detection.
type Snapshot struct {
	Content    string
	Hash       uint64
	CapturedAt time.Time
	LineCount  int
}

// NewSnapshot hashes and measures the captured text.
func NewSnapshot(content string) *Snapshot {
	lineCount := 0
	if content != "" {
		lineCount = strings.Count(content, "\n")
		if !strings.HasSuffix(content, "\n") {
			lineCount++
		}
	}
	return &Snapshot{
		Content:    content,
		Hash:       xxhash.Sum64String(content),
		CapturedAt: time.Now(),
		LineCount:  lineCount,
	}
}

// IsStale reports whether the snapshot's age exceeds ttl.
func (s *Snapshot) IsStale(ttl time.Duration) bool {
	return time.Since(s.CapturedAt) > ttl
}

// Age returns how old the snapshot is.
func (s *Snapshot) Age() time.Duration {
	return time.Since(s.CapturedAt)
}

// HasChanged reports whether the content differs from another snapshot,
// judged by hash alone.
func (s *Snapshot) HasChanged(other *Snapshot) bool {
	return s.Hash != other.Hash
}

// PaneCache caches pane captures per session with a short TTL so the UI can
// poll without spawning a tmux process on every tick. Duplicate refreshes
// under contention are tolerated; both produce equal observable results.
type PaneCache struct {
	executor *Executor
	mu       sync.RWMutex
	entries  map[session.SessionID]*Snapshot
	ttl      time.Duration
}

// NewPaneCache creates a cache backed by the given executor.
func NewPaneCache(executor *Executor, ttl time.Duration) *PaneCache {
	if ttl <= 0 {
		ttl = DefaultCaptureTTL
	}
	return &PaneCache{
		executor: executor,
		entries:  make(map[session.SessionID]*Snapshot),
		ttl:      ttl,
	}
}

// Get returns the cached snapshot when fresh, otherwise captures anew.
func (c *PaneCache) Get(ctx context.Context, id session.SessionID, tmuxName string) (*Snapshot, error) {
	c.mu.RLock()
	cached, ok := c.entries[id]
	c.mu.RUnlock()

	if ok && !cached.IsStale(c.ttl) {
		return cached, nil
	}
	return c.CaptureFresh(ctx, id, tmuxName)
}

// CaptureFresh bypasses the TTL and replaces the cache entry. The capture
// runs outside any lock; a cancelled context caches nothing.
func (c *PaneCache) CaptureFresh(ctx context.Context, id session.SessionID, tmuxName string) (*Snapshot, error) {
	start := scrollbackLines
	content, err := c.executor.CapturePane(ctx, tmuxName, &start, nil)
	if err != nil {
		return nil, err
	}

	snapshot := NewSnapshot(content)

	c.mu.Lock()
	c.entries[id] = snapshot
	c.mu.Unlock()

	return snapshot, nil
}

// Invalidate drops a session's cache entry.
func (c *PaneCache) Invalidate(id session.SessionID) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

// Clear drops all entries.
func (c *PaneCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[session.SessionID]*Snapshot)
	c.mu.Unlock()
}
