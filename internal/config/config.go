package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Video contains configuration for per-view video synthesis.
type Video struct {
	FFmpegBinary   string `toml:"ffmpeg_binary"`
	FrameRate      int    `toml:"frame_rate"`
	CRF            int    `toml:"crf"`
	PixelFormat    string `toml:"pixel_format"`
	ImageExtension string `toml:"image_extension"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Reconstruction contains configuration for sparse-model conversion.
type Reconstruction struct {
	ColmapBinary   string `toml:"colmap_binary"`
	SparseSubdir   string `toml:"sparse_subdir"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Batch contains configuration for scene discovery and fan-out.
type Batch struct {
	ScenePrefix string `toml:"scene_prefix"`
	Workers     int    `toml:"workers"`
	Naming      string `toml:"naming"`
}

// Manifest contains configuration for the SQLite run ledger.
type Manifest struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Config encapsulates all configuration values for scenebatch.
//
// Configuration sections by subsystem:
//   - Video: ffmpeg invocation parameters for image-sequence encoding
//   - Reconstruction: COLMAP model_converter invocation parameters
//   - Batch: scene discovery prefix and worker-pool sizing
//   - Manifest: optional SQLite ledger of run and per-scene outcomes
//   - Logging: log format, level, and optional log directory
type Config struct {
	Video          Video          `toml:"video"`
	Reconstruction Reconstruction `toml:"reconstruction"`
	Batch          Batch          `toml:"batch"`
	Manifest       Manifest       `toml:"manifest"`
	Logging        Logging        `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/scenebatch/config.toml")
}

// Load locates, parses, and validates a configuration file. A missing file is
// not an error; defaults apply. The returned config has all path fields
// expanded and normalized.
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
		if err := decoder.Decode(&cfg); err != nil {
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

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("scenebatch.toml")
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

func (c *Config) normalize() error {
	c.Video.FFmpegBinary = strings.TrimSpace(c.Video.FFmpegBinary)
	if c.Video.FFmpegBinary == "" {
		c.Video.FFmpegBinary = defaultFFmpegBinary
	}
	c.Video.PixelFormat = strings.TrimSpace(c.Video.PixelFormat)
	if c.Video.PixelFormat == "" {
		c.Video.PixelFormat = defaultPixelFormat
	}
	c.Video.ImageExtension = strings.TrimPrefix(strings.TrimSpace(c.Video.ImageExtension), ".")
	if c.Video.ImageExtension == "" {
		c.Video.ImageExtension = defaultImageExtension
	}

	c.Reconstruction.ColmapBinary = strings.TrimSpace(c.Reconstruction.ColmapBinary)
	if c.Reconstruction.ColmapBinary == "" {
		c.Reconstruction.ColmapBinary = defaultColmapBinary
	}
	c.Reconstruction.SparseSubdir = strings.Trim(strings.TrimSpace(c.Reconstruction.SparseSubdir), "/")
	if c.Reconstruction.SparseSubdir == "" {
		c.Reconstruction.SparseSubdir = defaultSparseSubdir
	}

	c.Batch.ScenePrefix = strings.TrimSpace(c.Batch.ScenePrefix)
	if c.Batch.ScenePrefix == "" {
		c.Batch.ScenePrefix = defaultScenePrefix
	}
	c.Batch.Naming = strings.ToLower(strings.TrimSpace(c.Batch.Naming))
	if c.Batch.Naming == "" {
		c.Batch.Naming = defaultNamingPolicy
	}

	if c.Manifest.Path != "" {
		expanded, err := expandPath(c.Manifest.Path)
		if err != nil {
			return err
		}
		c.Manifest.Path = expanded
	}
	if c.Logging.Dir != "" {
		expanded, err := expandPath(c.Logging.Dir)
		if err != nil {
			return err
		}
		c.Logging.Dir = expanded
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	return nil
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

// Sample returns the embedded sample configuration text.
func Sample() string {
	return sampleConfig
}
