package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks configuration invariants that cannot be repaired by
// normalization.
func (c *Config) Validate() error {
	var problems []string

	if c.Video.FrameRate <= 0 {
		problems = append(problems, fmt.Sprintf("video.frame_rate must be positive (got %d)", c.Video.FrameRate))
	}
	if c.Video.CRF < 0 || c.Video.CRF > 51 {
		problems = append(problems, fmt.Sprintf("video.crf must be within [0, 51] (got %d)", c.Video.CRF))
	}
	if c.Video.TimeoutSeconds < 0 {
		problems = append(problems, "video.timeout_seconds must not be negative")
	}
	if c.Reconstruction.TimeoutSeconds < 0 {
		problems = append(problems, "reconstruction.timeout_seconds must not be negative")
	}
	if c.Batch.Workers < 0 {
		problems = append(problems, "batch.workers must not be negative")
	}
	switch c.Batch.Naming {
	case "scene", "generic":
	default:
		problems = append(problems, fmt.Sprintf("batch.naming must be scene or generic (got %q)", c.Batch.Naming))
	}
	if c.Manifest.Enabled && strings.TrimSpace(c.Manifest.Path) == "" {
		problems = append(problems, "manifest.path is required when the manifest is enabled")
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be console or json (got %q)", c.Logging.Format))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
