package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/billie-coop/locomplete/internal/completion/session"
	"github.com/billie-coop/locomplete/internal/watcher"
)

// ErrUnknownKey is returned by Get and Set for keys that do not exist.
var ErrUnknownKey = errors.New("unknown config key")

// LogConfig controls the log file.
type LogConfig struct {
	File  string `json:"file"`
	Debug bool   `json:"debug"`
}

// Config represents the locomplete configuration.
type Config struct {
	// Completion tunables
	GatherTimeoutMS       int    `json:"gather_timeout_ms"`
	CommitTimeoutMS       int    `json:"commit_timeout_ms"`
	PageSize              int    `json:"page_size"`
	StartInSuggestionMode bool   `json:"start_in_suggestion_mode"`
	SuggestionDescription string `json:"suggestion_description"`

	// Sources
	WordMinLength int                 `json:"word_min_length"`
	SnippetsFile  string              `json:"snippets_file"`
	Keywords      map[string][]string `json:"keywords"`

	// UI preferences
	Theme string    `json:"theme"`
	Log   LogConfig `json:"log"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	s := session.DefaultConfig()
	return &Config{
		GatherTimeoutMS:       int(s.GatherTimeout / time.Millisecond),
		CommitTimeoutMS:       int(s.CommitTimeout / time.Millisecond),
		PageSize:              s.PageSize,
		SuggestionDescription: "<new>",
		WordMinLength:         3,
		SnippetsFile:          "snippets.yaml",
		Keywords: map[string][]string{
			"go": {
				"break", "case", "chan", "const", "continue", "default", "defer", "else",
				"fallthrough", "for", "func", "go", "goto", "if", "import", "interface",
				"map", "package", "range", "return", "select", "struct", "switch", "type", "var",
			},
		},
		Theme: "fire",
		Log:   LogConfig{File: "locomplete.log"},
	}
}

// Session converts the completion tunables.
func (c *Config) Session() session.Config {
	return session.Config{
		GatherTimeout:         time.Duration(c.GatherTimeoutMS) * time.Millisecond,
		CommitTimeout:         time.Duration(c.CommitTimeoutMS) * time.Millisecond,
		PageSize:              c.PageSize,
		StartInSuggestionMode: c.StartInSuggestionMode,
		SuggestionDescription: c.SuggestionDescription,
	}
}

// KeywordsFor returns the keywords configured for contentType.
func (c *Config) KeywordsFor(contentType string) []string {
	return c.Keywords[contentType]
}

func (c *Config) clone() *Config {
	n := *c
	n.Keywords = make(map[string][]string, len(c.Keywords))
	for k, v := range c.Keywords {
		n.Keywords[k] = slices.Clone(v)
	}
	return &n
}

// Keys lists the settable keys. Keywords are set per content type as
// "keywords.<content type>".
var Keys = []string{
	"gather_timeout_ms",
	"commit_timeout_ms",
	"page_size",
	"start_in_suggestion_mode",
	"suggestion_description",
	"word_min_length",
	"snippets_file",
	"theme",
	"log.file",
	"log.debug",
}

// Manager handles configuration loading and saving.
type Manager struct {
	projectPath string
	configPath  string

	mu     sync.RWMutex
	config *Config
}

// NewManager creates a configuration manager for the project at projectPath.
func NewManager(projectPath string) *Manager {
	dir := filepath.Join(projectPath, ".locomplete")
	return &Manager{
		projectPath: projectPath,
		configPath:  filepath.Join(dir, "config.json"),
		config:      DefaultConfig(),
	}
}

// Path returns the config file path.
func (m *Manager) Path() string { return m.configPath }

// Dir returns the .locomplete directory.
func (m *Manager) Dir() string { return filepath.Dir(m.configPath) }

// Resolve makes a configured path absolute, relative to the .locomplete
// directory.
func (m *Manager) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.Dir(), path)
}

// Load reads the configuration from disk, creating defaults if needed.
func (m *Manager) Load() error {
	if err := os.MkdirAll(m.Dir(), 0o755); err != nil {
		return fmt.Errorf("failed to create .locomplete directory: %w", err)
	}
	if err := m.ensureGitignore(); err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}

	if _, err := os.Stat(m.configPath); os.IsNotExist(err) {
		return m.Save()
	}

	cfg, err := m.read()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return nil
}

func (m *Manager) read() (*Config, error) {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Missing keys keep their defaults.
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	expandEnvVars(cfg)
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.GatherTimeoutMS < 0:
		return fmt.Errorf("gather_timeout_ms must not be negative, got %d", c.GatherTimeoutMS)
	case c.CommitTimeoutMS < 0:
		return fmt.Errorf("commit_timeout_ms must not be negative, got %d", c.CommitTimeoutMS)
	case c.PageSize < 1:
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	return nil
}

// Save writes the current configuration to disk.
func (m *Manager) Save() error {
	m.mu.RLock()
	data, err := json.MarshalIndent(m.config, "", "  ")
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.clone()
}

// Value returns the string form of one setting.
func (m *Manager) Value(key string) (string, error) {
	cfg := m.Get()
	if ct, ok := strings.CutPrefix(key, "keywords."); ok {
		return strings.Join(cfg.Keywords[ct], ","), nil
	}
	switch key {
	case "gather_timeout_ms":
		return strconv.Itoa(cfg.GatherTimeoutMS), nil
	case "commit_timeout_ms":
		return strconv.Itoa(cfg.CommitTimeoutMS), nil
	case "page_size":
		return strconv.Itoa(cfg.PageSize), nil
	case "start_in_suggestion_mode":
		return strconv.FormatBool(cfg.StartInSuggestionMode), nil
	case "suggestion_description":
		return cfg.SuggestionDescription, nil
	case "word_min_length":
		return strconv.Itoa(cfg.WordMinLength), nil
	case "snippets_file":
		return cfg.SnippetsFile, nil
	case "theme":
		return cfg.Theme, nil
	case "log.file":
		return cfg.Log.File, nil
	case "log.debug":
		return strconv.FormatBool(cfg.Log.Debug), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Set updates a configuration value and saves.
func (m *Manager) Set(key, value string) error {
	cfg := m.Get()
	if err := cfg.set(key, value); err != nil {
		return err
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	return m.Save()
}

func (c *Config) set(key, value string) error {
	if ct, ok := strings.CutPrefix(key, "keywords."); ok && ct != "" {
		var words []string
		for _, w := range strings.Split(value, ",") {
			if w = strings.TrimSpace(w); w != "" {
				words = append(words, w)
			}
		}
		c.Keywords[ct] = words
		return nil
	}

	var err error
	switch key {
	case "gather_timeout_ms":
		c.GatherTimeoutMS, err = strconv.Atoi(value)
	case "commit_timeout_ms":
		c.CommitTimeoutMS, err = strconv.Atoi(value)
	case "page_size":
		c.PageSize, err = strconv.Atoi(value)
	case "start_in_suggestion_mode":
		c.StartInSuggestionMode, err = strconv.ParseBool(value)
	case "suggestion_description":
		c.SuggestionDescription = value
	case "word_min_length":
		c.WordMinLength, err = strconv.Atoi(value)
	case "snippets_file":
		c.SnippetsFile = value
	case "theme":
		c.Theme = value
	case "log.file":
		c.Log.File = value
	case "log.debug":
		c.Log.Debug, err = strconv.ParseBool(value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}

// Watch reloads the configuration whenever the file changes on disk and
// passes the new configuration to fn. A file that fails to parse is logged
// and the previous configuration stays in effect.
func (m *Manager) Watch(ctx context.Context, logger *zap.Logger, fn func(*Config)) (*watcher.FileWatcher, error) {
	logger = logger.Named("config")
	w := watcher.NewWatcher(200*time.Millisecond, func([]string) {
		cfg, err := m.read()
		if err != nil {
			logger.Warn("config reload failed", zap.String("path", m.configPath), zap.Error(err))
			return
		}
		m.mu.Lock()
		m.config = cfg
		m.mu.Unlock()
		logger.Info("config reloaded", zap.String("path", m.configPath))
		if fn != nil {
			fn(cfg.clone())
		}
	}, watcher.WithLogger(logger))

	if err := w.Watch(ctx, m.configPath); err != nil {
		return nil, fmt.Errorf("failed to watch config: %w", err)
	}
	return w, nil
}

// ensureGitignore creates a .gitignore in .locomplete/ with smart defaults.
func (m *Manager) ensureGitignore() error {
	gitignorePath := filepath.Join(m.Dir(), ".gitignore")
	if _, err := os.Stat(gitignorePath); !os.IsNotExist(err) {
		return nil
	}

	gitignoreContent := `# locomplete data directory .gitignore
#
# Config and snippets are committed; logs are not.

*.log
*.log.gz
*.tmp

!config.json
!snippets.yaml
!.gitignore
`
	return os.WriteFile(gitignorePath, []byte(gitignoreContent), 0o644)
}

var envVar = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// expandEnvVars expands environment variables in path-like values.
func expandEnvVars(cfg *Config) {
	cfg.SnippetsFile = expandString(cfg.SnippetsFile)
	cfg.Log.File = expandString(cfg.Log.File)
	cfg.Theme = expandString(cfg.Theme)
}

// expandString expands $VAR and ${VAR}. Unset variables are left as written.
func expandString(s string) string {
	return envVar.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimPrefix(match, "$")
		name = strings.TrimSuffix(strings.TrimPrefix(name, "{"), "}")
		if value := os.Getenv(name); value != "" {
			return value
		}
		return match
	})
}
