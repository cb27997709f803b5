package multiplexer

import (
	"regexp"
	"strings"
	"sync"

	"claude-commander/internal/session"
)

// DefaultAnalyzeLines is how many tail lines the detector inspects.
const DefaultAnalyzeLines = 50

var (
	patternsOnce sync.Once

	// Prompt shapes meaning the agent is waiting for input.
	promptPatterns []*regexp.Regexp

	// Activity indicators: spinners, loading text, progress bars, and a
	// streaming-token heuristic for long unterminated lines.
	processingPatterns []*regexp.Regexp

	// Error indicators, checked first.
	errorPatterns []*regexp.Regexp
)

func compilePatterns() {
	promptPatterns = []*regexp.Regexp{
		// Claude Code prompts
		regexp.MustCompile(`(?m)^>\s*$`),
		regexp.MustCompile(`(?m)^claude>\s*$`),
		regexp.MustCompile(`(?m)^\$ $`),
		// Aider prompts
		regexp.MustCompile(`(?m)^aider>\s*$`),
		regexp.MustCompile(`(?m)^───.*───\s*$`),
		// Generic shell prompts
		regexp.MustCompile(`(?m)^[^>\n]*>\s*$`),
		regexp.MustCompile(`(?m)^[^$\n]*\$\s*$`),
	}

	processingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏]`),
		regexp.MustCompile(`(?i)(thinking|processing|running|loading)\.{1,3}`),
		regexp.MustCompile(`\[=+>?\s*\]`),
		regexp.MustCompile(`\[#+\s*\]`),
		regexp.MustCompile(`(?m)^[^$>\n]{10,}[^\n\s]$`),
	}

	errorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^error:`),
		regexp.MustCompile(`(?im)^fatal:`),
		regexp.MustCompile(`(?im)^exception:`),
		regexp.MustCompile(`(?i)traceback`),
		regexp.MustCompile(`(?im)^panic:`),
		regexp.MustCompile(`(?i)rate.?limit`),
		regexp.MustCompile(`(?i)api.?error`),
	}
}

// StateDetector classifies agent activity from captured pane content.
// Detection is a pure function of the snapshot text.
type StateDetector struct {
	// AnalyzeLines bounds how many lines from the tail are inspected.
	AnalyzeLines int
}

// NewStateDetector returns a detector over the default tail window.
func NewStateDetector() *StateDetector {
	return &StateDetector{AnalyzeLines: DefaultAnalyzeLines}
}

// Detect classifies the snapshot. Priority: error, processing, waiting,
// unknown.
func (d *StateDetector) Detect(snapshot *Snapshot) session.AgentState {
	patternsOnce.Do(compilePatterns)

	lines := strings.Split(snapshot.Content, "\n")
	start := 0
	if len(lines) > d.AnalyzeLines {
		start = len(lines) - d.AnalyzeLines
	}
	tail := strings.Join(lines[start:], "\n")

	if matchesAny(tail, errorPatterns) {
		return session.AgentError
	}
	if matchesAny(tail, processingPatterns) {
		return session.AgentProcessing
	}
	if matchesAny(tail, promptPatterns) {
		return session.AgentWaiting
	}
	return session.AgentUnknown
}

func matchesAny(content string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(content) {
			return true
		}
	}
	return false
}
