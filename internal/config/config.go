package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Timecodes contains defaults for frame-rate handling.
type Timecodes struct {
	// DefaultFPS is used when no --fps is given.
	DefaultFPS string `toml:"default_fps"`
}

// Chapters contains defaults for generated chapter files.
type Chapters struct {
	Language string `toml:"language"`
	Country  string `toml:"country"`
	// NameFormat is a fmt pattern given the 1-based chapter number.
	NameFormat string `toml:"name_format"`
}

// Audio contains configuration for the mkvmerge audio cutter.
type Audio struct {
	MkvmergeBinary string `toml:"mkvmerge_binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Merge          bool   `toml:"merge"`
	RemoveSplits   bool   `toml:"remove_splits"`
}

// Keyframes contains configuration for qpfile output.
type Keyframes struct {
	IDR bool `toml:"idr"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	// File additionally receives every log line when set.
	File string `toml:"file"`
}

// Config encapsulates all configuration values for vfrchap.
//
// Configuration sections by subsystem:
//   - Timecodes: default frame rate
//   - Chapters: chapter language, country and fallback names
//   - Audio: mkvmerge binary and split handling
//   - Keyframes: qpfile frame type
//   - Logging: log format, level, and optional file
type Config struct {
	Timecodes Timecodes `toml:"timecodes"`
	Chapters  Chapters  `toml:"chapters"`
	Audio     Audio     `toml:"audio"`
	Keyframes Keyframes `toml:"keyframes"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: %s", strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(defaultProjectConfigFile)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// MkvmergeBinary returns the mkvmerge executable name or path.
func (c *Config) MkvmergeBinary() string {
	if binary := strings.TrimSpace(c.Audio.MkvmergeBinary); binary != "" {
		return binary
	}
	return defaultMkvmergeBinary
}

// MkvmergeTimeout bounds a single mkvmerge invocation. Zero means no limit.
func (c *Config) MkvmergeTimeout() time.Duration {
	return time.Duration(c.Audio.TimeoutSeconds) * time.Second
}

// ChapterName renders the fallback name of the 1-based chapter n.
func (c *Config) ChapterName(n int) string {
	return fmt.Sprintf(c.Chapters.NameFormat, n)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
