package git

import (
	"testing"
	"time"
)

func TestParseDiffStat(t *testing.T) {
	output := ` src/main.go | 10 ++++------
 src/lib.go  |  5 +++++
 3 files changed, 10 insertions(+), 5 deletions(-)`

	files, added, removed := parseDiffStat(output)
	if files != 3 || added != 10 || removed != 5 {
		t.Errorf("Expected (3,10,5), got (%d,%d,%d)", files, added, removed)
	}
}

func TestParseDiffStatSingular(t *testing.T) {
	output := ` README.md | 3 +++
 1 file changed, 3 insertions(+)`

	files, added, removed := parseDiffStat(output)
	if files != 1 || added != 3 || removed != 0 {
		t.Errorf("Expected (1,3,0), got (%d,%d,%d)", files, added, removed)
	}
}

func TestParseDiffStatDeletionsOnly(t *testing.T) {
	output := " 2 files changed, 7 deletions(-)"

	files, added, removed := parseDiffStat(output)
	if files != 2 || added != 0 || removed != 7 {
		t.Errorf("Expected (2,0,7), got (%d,%d,%d)", files, added, removed)
	}
}

func TestParseDiffStatEmpty(t *testing.T) {
	files, added, removed := parseDiffStat("")
	if files != 0 || added != 0 || removed != 0 {
		t.Errorf("Expected (0,0,0), got (%d,%d,%d)", files, added, removed)
	}
}

func TestDiffInfoEmpty(t *testing.T) {
	info := EmptyDiff()
	if info.HasChanges() {
		t.Error("Empty diff must report no changes")
	}
	if info.Summary() != "No changes" {
		t.Errorf("Expected 'No changes', got %q", info.Summary())
	}
}

func TestDiffInfoSummary(t *testing.T) {
	info := &DiffInfo{
		Diff:         "some diff",
		FilesChanged: 2,
		LinesAdded:   10,
		LinesRemoved: 5,
		ComputedAt:   time.Now(),
	}

	if !info.HasChanges() {
		t.Error("Expected changes")
	}
	summary := info.Summary()
	if summary != "2 file(s), +10 -5 lines" {
		t.Errorf("Unexpected summary: %q", summary)
	}
}

func TestDiffInfoStaleness(t *testing.T) {
	info := &DiffInfo{ComputedAt: time.Now().Add(-time.Second)}
	if !info.IsStale(500 * time.Millisecond) {
		t.Error("Expected old diff to be stale")
	}
	if info.IsStale(time.Minute) {
		t.Error("Expected recent diff to be fresh under long TTL")
	}
}

func TestDiffCacheInvalidate(t *testing.T) {
	cache := NewDiffCache(DefaultDiffCacheTTL)

	cache.entries["id"] = EmptyDiff()
	cache.Invalidate("id")
	if _, ok := cache.entries["id"]; ok {
		t.Error("Expected entry to be dropped")
	}

	cache.entries["a"] = EmptyDiff()
	cache.Clear()
	if len(cache.entries) != 0 {
		t.Error("Expected empty cache")
	}
}
