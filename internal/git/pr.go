package git

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
)

// PRInfo is the minimal metadata of an open pull request.
type PRInfo struct {
	Number int    `json:"number"`
	URL    string `json:"url"`
}

// IsGHAvailable reports whether the gh CLI can be invoked. The manager
// probes this once so PR polling never forks when gh is missing.
func IsGHAvailable(ctx context.Context) bool {
	return exec.CommandContext(ctx, "gh", "--version").Run() == nil
}

// CheckPRForBranch returns the open PR for branch, or nil on any failure:
// gh missing, not authenticated, network error, no GitHub remote, or simply
// no open PR.
func CheckPRForBranch(ctx context.Context, repoPath, branch string) *PRInfo {
	cmd := exec.CommandContext(ctx, "gh",
		"pr", "list",
		"--head", branch,
		"--json", "number,url",
		"--limit", "1")
	cmd.Dir = repoPath

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil
	}

	return parsePRJSON(stdout.Bytes())
}

// parsePRJSON parses the single-element array gh emits; empty array means
// no PR.
func parsePRJSON(data []byte) *PRInfo {
	var prs []PRInfo
	if err := json.Unmarshal(data, &prs); err != nil {
		return nil
	}
	if len(prs) == 0 || prs[0].URL == "" {
		return nil
	}
	return &prs[0]
}
