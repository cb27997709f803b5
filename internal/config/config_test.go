package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.DefaultProgram != "claude" {
		t.Errorf("Expected default program claude, got %q", cfg.DefaultProgram)
	}
	if cfg.BranchPrefix != "" {
		t.Errorf("Expected empty branch prefix, got %q", cfg.BranchPrefix)
	}
	if cfg.MaxConcurrentTmux != 16 {
		t.Errorf("Expected 16 concurrent tmux commands, got %d", cfg.MaxConcurrentTmux)
	}
	if cfg.CaptureCacheTTLMs != 50 {
		t.Errorf("Expected 50ms capture TTL, got %d", cfg.CaptureCacheTTLMs)
	}
	if cfg.DiffCacheTTLMs != 500 {
		t.Errorf("Expected 500ms diff TTL, got %d", cfg.DiffCacheTTLMs)
	}
	if cfg.UIRefreshFPS != 30 {
		t.Errorf("Expected 30 fps, got %d", cfg.UIRefreshFPS)
	}
	if cfg.PRCheckIntervalSecs != 600 {
		t.Errorf("Expected 600s PR interval, got %d", cfg.PRCheckIntervalSecs)
	}
	if cfg.ShellProgram == "" {
		t.Error("Expected a shell program default")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `default_program = "aider"
branch_prefix = "cc"
max_concurrent_tmux = 8
diff_cache_ttl_ms = 250
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom failed: %v", err)
	}

	if cfg.DefaultProgram != "aider" {
		t.Errorf("Expected aider, got %q", cfg.DefaultProgram)
	}
	if cfg.BranchPrefix != "cc" {
		t.Errorf("Expected prefix cc, got %q", cfg.BranchPrefix)
	}
	if cfg.MaxConcurrentTmux != 8 {
		t.Errorf("Expected 8, got %d", cfg.MaxConcurrentTmux)
	}
	if cfg.DiffCacheTTLMs != 250 {
		t.Errorf("Expected 250, got %d", cfg.DiffCacheTTLMs)
	}
	// Untouched keys keep their defaults.
	if cfg.CaptureCacheTTLMs != 50 {
		t.Errorf("Expected default 50ms capture TTL, got %d", cfg.CaptureCacheTTLMs)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Expected defaults for missing config, got %v", err)
	}
	if cfg.DefaultProgram != "claude" {
		t.Errorf("Expected default program, got %q", cfg.DefaultProgram)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`default_program = "aider"`), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CC_DEFAULT_PROGRAM", "goose")

	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom failed: %v", err)
	}
	if cfg.DefaultProgram != "goose" {
		t.Errorf("Expected environment to win, got %q", cfg.DefaultProgram)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`max_concurrent_tmux = 0`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := loadFrom(path); err == nil {
		t.Error("Expected validation error for zero concurrency")
	}
}

func TestResolvedWorktreesDirOverride(t *testing.T) {
	cfg := Default()
	cfg.WorktreesDir = "/custom/worktrees"

	dir, err := cfg.ResolvedWorktreesDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/custom/worktrees" {
		t.Errorf("Expected override to win, got %q", dir)
	}
}

func TestResolveEditorChain(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "vim")

	cfg := Default()
	if got := cfg.ResolveEditor(); got != "vim" {
		t.Errorf("Expected $EDITOR fallback, got %q", got)
	}

	cfg.Editor = "zed"
	if got := cfg.ResolveEditor(); got != "zed" {
		t.Errorf("Expected config to win, got %q", got)
	}
}

func TestIsGUIEditor(t *testing.T) {
	cfg := Default()

	if !cfg.IsGUIEditor("code") {
		t.Error("Expected code to be GUI")
	}
	if !cfg.IsGUIEditor("/usr/local/bin/zed") {
		t.Error("Expected path basename matching")
	}
	if cfg.IsGUIEditor("nvim") {
		t.Error("Expected nvim to be terminal")
	}

	gui := false
	cfg.EditorGUI = &gui
	if cfg.IsGUIEditor("code") {
		t.Error("Expected explicit editor_gui to win")
	}
}
