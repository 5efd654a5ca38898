package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults for the JabRef ":path/to/file.pdf:PDF" file-field convention.
const (
	DefaultFilePrefixLen = 1
	DefaultFileSuffixLen = 4
)

// Environment variables that override file configuration.
const (
	EnvFilePrefixLen = "PANNOTE_FILE_PREFIX_LEN"
	EnvFileSuffixLen = "PANNOTE_FILE_SUFFIX_LEN"
	EnvFileField     = "PANNOTE_FILE_FIELD"
	EnvReviewField   = "PANNOTE_REVIEW_FIELD"
)

// Config holds application configuration.
type Config struct {
	// FilePrefixLen is the number of leading characters stripped from a
	// bibliography file reference before joining it onto the PDF directory.
	// Pointer so that an explicit 0 survives merging.
	FilePrefixLen *int `json:"file_prefix_len,omitempty"`

	// FileSuffixLen is the number of trailing characters stripped.
	FileSuffixLen *int `json:"file_suffix_len,omitempty"`

	// FileField names the bibliography field holding the file reference
	FileField string `json:"file_field,omitempty"`

	// ReviewField names the bibliography field holding the reader's review
	ReviewField string `json:"review_field,omitempty"`

	// ServeBind and ServePort are the defaults for `pannote serve`
	ServeBind string `json:"serve_bind,omitempty"`
	ServePort int    `json:"serve_port,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of type names to disable entirely.
	// Known types: "annotations". Unknown type names are logged as warnings.
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		FilePrefixLen: intPtr(DefaultFilePrefixLen),
		FileSuffixLen: intPtr(DefaultFileSuffixLen),
		FileField:     "file",
		ReviewField:   "review",
		ServeBind:     "127.0.0.1",
		ServePort:     8765,
	}
}

// PrefixLen returns FilePrefixLen, or the default when unset.
func (c *Config) PrefixLen() int {
	if c == nil || c.FilePrefixLen == nil {
		return DefaultFilePrefixLen
	}
	return *c.FilePrefixLen
}

// SuffixLen returns FileSuffixLen, or the default when unset.
func (c *Config) SuffixLen() int {
	if c == nil || c.FileSuffixLen == nil {
		return DefaultFileSuffixLen
	}
	return *c.FileSuffixLen
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.pannote.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.pannote) and repo (.pannote) directories.
// Repo config is found by walking upward from startDir to find the nearest .pannote/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .pannote/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".pannote", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ApplyEnv loads envFile (if it exists) into the process environment with
// godotenv and then applies the PANNOTE_* overrides to cfg. A missing env
// file is not an error; variables already set in the environment win over
// the file.
func ApplyEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if v, ok, err := envInt(EnvFilePrefixLen); err != nil {
		return err
	} else if ok {
		cfg.FilePrefixLen = &v
	}
	if v, ok, err := envInt(EnvFileSuffixLen); err != nil {
		return err
	} else if ok {
		cfg.FileSuffixLen = &v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFileField)); v != "" {
		cfg.FileField = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvReviewField)); v != "" {
		cfg.ReviewField = v
	}
	return nil
}

func envInt(key string) (int, bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false, fmt.Errorf("%s must be a non-negative integer, got %q", key, raw)
	}
	return n, true, nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if (cfg.FilePrefixLen != nil && *cfg.FilePrefixLen < 0) || (cfg.FileSuffixLen != nil && *cfg.FileSuffixLen < 0) {
		return nil, fmt.Errorf("%s: file_prefix_len and file_suffix_len must not be negative", configPath)
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Pointers: overlay wins if set, so an explicit 0 overrides a default
	result.FilePrefixLen = overlay.FilePrefixLen
	if result.FilePrefixLen == nil {
		result.FilePrefixLen = base.FilePrefixLen
	}
	result.FileSuffixLen = overlay.FileSuffixLen
	if result.FileSuffixLen == nil {
		result.FileSuffixLen = base.FileSuffixLen
	}

	// Scalars: overlay wins if non-zero, else base
	result.FileField = firstNonEmpty(overlay.FileField, base.FileField)
	result.ReviewField = firstNonEmpty(overlay.ReviewField, base.ReviewField)
	result.ServeBind = firstNonEmpty(overlay.ServeBind, base.ServeBind)
	result.ServePort = overlay.ServePort
	if result.ServePort == 0 {
		result.ServePort = base.ServePort
	}

	// Arrays: merge and deduplicate
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}

func intPtr(n int) *int { return &n }

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string(nil), a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
