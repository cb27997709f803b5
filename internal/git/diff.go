package git

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"claude-commander/internal/session"
)

// DefaultDiffCacheTTL is how long a cached diff stays fresh.
const DefaultDiffCacheTTL = 500 * time.Millisecond

// DiffInfo is a computed working-tree diff plus its summary.
type DiffInfo struct {
	// Diff is the unified diff text, untracked files included.
	Diff string
	// FilesChanged counts tracked-changed plus untracked files.
	FilesChanged int
	LinesAdded   int
	LinesRemoved int
	// LineCount is the number of lines in Diff, precomputed for renderers.
	LineCount  int
	ComputedAt time.Time
	// BaseCommit identifies what the diff was taken against.
	BaseCommit string
}

// EmptyDiff returns a diff with no changes.
func EmptyDiff() *DiffInfo {
	return &DiffInfo{ComputedAt: time.Now()}
}

// IsStale reports whether the diff's age exceeds ttl.
func (d *DiffInfo) IsStale(ttl time.Duration) bool {
	return time.Since(d.ComputedAt) > ttl
}

// HasChanges reports whether anything differs from HEAD.
func (d *DiffInfo) HasChanges() bool {
	return d.FilesChanged > 0 || d.LinesAdded > 0 || d.LinesRemoved > 0
}

// Summary renders a short human-readable change count.
func (d *DiffInfo) Summary() string {
	if !d.HasChanges() {
		return "No changes"
	}
	return strconv.Itoa(d.FilesChanged) + " file(s), +" +
		strconv.Itoa(d.LinesAdded) + " -" + strconv.Itoa(d.LinesRemoved) + " lines"
}

// DiffCache caches per-session diffs with a TTL. Entries are immutable once
// stored; a cancelled computation caches nothing.
type DiffCache struct {
	mu      sync.RWMutex
	entries map[session.SessionID]*DiffInfo
	ttl     time.Duration
}

// NewDiffCache creates a cache with the given TTL.
func NewDiffCache(ttl time.Duration) *DiffCache {
	if ttl <= 0 {
		ttl = DefaultDiffCacheTTL
	}
	return &DiffCache{
		entries: make(map[session.SessionID]*DiffInfo),
		ttl:     ttl,
	}
}

// Get returns the cached diff when fresh, otherwise computes anew for the
// worktree at path.
func (c *DiffCache) Get(ctx context.Context, id session.SessionID, worktreePath string) (*DiffInfo, error) {
	c.mu.RLock()
	cached, ok := c.entries[id]
	c.mu.RUnlock()

	if ok && !cached.IsStale(c.ttl) {
		return cached, nil
	}
	return c.Compute(ctx, id, worktreePath)
}

// Compute bypasses the TTL and replaces the cache entry.
func (c *DiffCache) Compute(ctx context.Context, id session.SessionID, worktreePath string) (*DiffInfo, error) {
	info, err := ComputeDiff(ctx, worktreePath)
	if err != nil {
		return nil, err
	}
	// A context cancelled part-way leaves a partial diff; never cache it.
	if err := ctx.Err(); err != nil {
		return nil, &DiffError{Err: err}
	}

	c.mu.Lock()
	c.entries[id] = info
	c.mu.Unlock()

	return info, nil
}

// Invalidate drops a session's cache entry.
func (c *DiffCache) Invalidate(id session.SessionID) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

// Clear drops all entries.
func (c *DiffCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[session.SessionID]*DiffInfo)
	c.mu.Unlock()
}

// ComputeDiff builds the working-tree diff for path: tracked changes
// against HEAD plus a synthesised /dev/null diff per untracked file, so new
// files show up as additions.
func ComputeDiff(ctx context.Context, path string) (*DiffInfo, error) {
	diffOut, err := runGit(ctx, path, "diff", "HEAD")
	if err != nil {
		// A worktree on an unborn branch has no HEAD; report no tracked
		// changes rather than failing the whole computation.
		diffOut = ""
	}
	diff := diffOut

	untrackedOut, err := runGit(ctx, path, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, &DiffError{Err: err}
	}

	var untracked []string
	for _, file := range strings.Split(untrackedOut, "\n") {
		if file != "" {
			untracked = append(untracked, file)
		}
	}

	for _, file := range untracked {
		fileDiff := diffAgainstNull(ctx, path, file)
		if fileDiff == "" {
			continue
		}
		if diff != "" && !strings.HasSuffix(diff, "\n\n") {
			if strings.HasSuffix(diff, "\n") {
				diff += "\n"
			} else {
				diff += "\n\n"
			}
		}
		diff += fileDiff
	}

	filesChanged, linesAdded, linesRemoved := 0, 0, 0
	if statOut, err := runGit(ctx, path, "diff", "--stat", "HEAD"); err == nil {
		filesChanged, linesAdded, linesRemoved = parseDiffStat(statOut)
	}
	filesChanged += len(untracked)

	lineCount := 0
	if diff != "" {
		lineCount = strings.Count(diff, "\n")
		if !strings.HasSuffix(diff, "\n") {
			lineCount++
		}
	}

	return &DiffInfo{
		Diff:         diff,
		FilesChanged: filesChanged,
		LinesAdded:   linesAdded,
		LinesRemoved: linesRemoved,
		LineCount:    lineCount,
		ComputedAt:   time.Now(),
		BaseCommit:   "HEAD",
	}, nil
}

// diffAgainstNull synthesises a creation diff for an untracked file.
// git diff --no-index exits 1 when the files differ, which is the expected
// case here.
func diffAgainstNull(ctx context.Context, dir, file string) string {
	cmd := exec.CommandContext(ctx, "git",
		"diff", "--no-index",
		"--src-prefix=a/", "--dst-prefix=b/",
		"--", "/dev/null", file)
	cmd.Dir = dir

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	_ = cmd.Run()

	return stdout.String()
}

// parseDiffStat extracts (files, added, removed) from the summary line of
// `git diff --stat`, e.g. "3 files changed, 10 insertions(+), 5
// deletions(-)". Singular forms and missing clauses are tolerated.
func parseDiffStat(output string) (filesChanged, linesAdded, linesRemoved int) {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "changed") {
			continue
		}
		for _, part := range strings.Split(line, ",") {
			part = strings.TrimSpace(part)
			fields := strings.Fields(part)
			if len(fields) == 0 {
				continue
			}
			n, err := strconv.Atoi(fields[0])
			if err != nil {
				continue
			}
			switch {
			case strings.Contains(part, "file"):
				filesChanged = n
			case strings.Contains(part, "insertion"):
				linesAdded = n
			case strings.Contains(part, "deletion"):
				linesRemoved = n
			}
		}
		break
	}
	return filesChanged, linesAdded, linesRemoved
}
