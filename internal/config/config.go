package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const appDirName = "claude-commander"

// Config represents the application configuration. Values are layered:
// environment (CC_ prefix) over config file over defaults.
type Config struct {
	// DefaultProgram is run in new sessions when none is given.
	DefaultProgram string `mapstructure:"default_program"`

	// BranchPrefix is prepended to derived branch names as "<prefix>/".
	// Empty means no prefix.
	BranchPrefix string `mapstructure:"branch_prefix"`

	// MaxConcurrentTmux caps concurrent tmux commands.
	MaxConcurrentTmux int `mapstructure:"max_concurrent_tmux"`

	// CaptureCacheTTLMs is the pane content cache TTL in milliseconds.
	CaptureCacheTTLMs int `mapstructure:"capture_cache_ttl_ms"`

	// DiffCacheTTLMs is the diff cache TTL in milliseconds.
	DiffCacheTTLMs int `mapstructure:"diff_cache_ttl_ms"`

	// UIRefreshFPS is the dashboard tick cadence.
	UIRefreshFPS int `mapstructure:"ui_refresh_fps"`

	// WorktreesDir overrides the root directory worktrees are created under.
	WorktreesDir string `mapstructure:"worktrees_dir"`

	// ShellProgram is used for plain shell sessions.
	ShellProgram string `mapstructure:"shell_program"`

	// PRCheckIntervalSecs is the cadence of GitHub PR probes. 0 disables.
	PRCheckIntervalSecs int `mapstructure:"pr_check_interval_secs"`

	// Editor is the command used to open a session's worktree.
	Editor string `mapstructure:"editor"`

	// EditorGUI forces GUI/terminal treatment of the editor. When unset the
	// editor basename is checked against a known GUI list.
	EditorGUI *bool `mapstructure:"editor_gui"`

	// Debug enables debug logging.
	Debug bool `mapstructure:"debug"`

	// LogFile is the log destination; empty disables file logging.
	LogFile string `mapstructure:"log_file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "bash"
	}
	return &Config{
		DefaultProgram:      "claude",
		BranchPrefix:        "",
		MaxConcurrentTmux:   16,
		CaptureCacheTTLMs:   50,
		DiffCacheTTLMs:      500,
		UIRefreshFPS:        30,
		ShellProgram:        shell,
		PRCheckIntervalSecs: 600,
	}
}

// Load reads configuration from the config file and environment.
func Load() (*Config, error) {
	path, err := FilePath()
	if err != nil {
		return nil, err
	}
	return loadFrom(path)
}

func loadFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	v.SetEnvPrefix("CC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults plus environment apply.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := Default()
	v.SetDefault("default_program", defaults.DefaultProgram)
	v.SetDefault("branch_prefix", defaults.BranchPrefix)
	v.SetDefault("max_concurrent_tmux", defaults.MaxConcurrentTmux)
	v.SetDefault("capture_cache_ttl_ms", defaults.CaptureCacheTTLMs)
	v.SetDefault("diff_cache_ttl_ms", defaults.DiffCacheTTLMs)
	v.SetDefault("ui_refresh_fps", defaults.UIRefreshFPS)
	v.SetDefault("worktrees_dir", "")
	v.SetDefault("shell_program", defaults.ShellProgram)
	v.SetDefault("pr_check_interval_secs", defaults.PRCheckIntervalSecs)
	v.SetDefault("debug", false)
	v.SetDefault("log_file", "")
}

func (c *Config) validate() error {
	if c.MaxConcurrentTmux <= 0 {
		return fmt.Errorf("invalid configuration value for 'max_concurrent_tmux': must be positive, got %d", c.MaxConcurrentTmux)
	}
	if c.UIRefreshFPS <= 0 {
		return fmt.Errorf("invalid configuration value for 'ui_refresh_fps': must be positive, got %d", c.UIRefreshFPS)
	}
	if c.CaptureCacheTTLMs < 0 || c.DiffCacheTTLMs < 0 {
		return fmt.Errorf("invalid configuration value: cache TTLs must not be negative")
	}
	return nil
}

// FilePath returns the config file location.
func FilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, appDirName, "config.toml"), nil
}

// DataDir returns the platform data directory for state and worktrees.
func DataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", appDirName), nil
}

// StateFilePath returns the persisted session state location.
func StateFilePath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "state.json"), nil
}

// ResolvedWorktreesDir returns the directory worktrees are created under,
// honouring the worktrees_dir override.
func (c *Config) ResolvedWorktreesDir() (string, error) {
	if c.WorktreesDir != "" {
		return c.WorktreesDir, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "worktrees"), nil
}

// EnsureDirectories creates the config and data directories.
func (c *Config) EnsureDirectories() error {
	configPath, err := FilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	worktrees, err := c.ResolvedWorktreesDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(worktrees, 0o755); err != nil {
		return fmt.Errorf("failed to create worktrees directory: %w", err)
	}
	return nil
}

// ResolveEditor returns the editor command: config, then $VISUAL, then
// $EDITOR, then empty.
func (c *Config) ResolveEditor() string {
	if c.Editor != "" {
		return c.Editor
	}
	if visual := os.Getenv("VISUAL"); visual != "" {
		return visual
	}
	return os.Getenv("EDITOR")
}

// IsGUIEditor reports whether the editor detaches from the terminal.
func (c *Config) IsGUIEditor(editor string) bool {
	if c.EditorGUI != nil {
		return *c.EditorGUI
	}
	switch filepath.Base(editor) {
	case "code", "code-insiders", "cursor",
		"zed", "zeditor",
		"subl", "sublime_text",
		"idea", "goland", "rustrover", "clion", "pycharm", "webstorm", "phpstorm",
		"atom", "lapce", "fleet",
		"gedit", "kate", "mousepad",
		"gvim", "open", "xdg-open":
		return true
	}
	return false
}
