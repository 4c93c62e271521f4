package colmap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scenebatch/internal/config"
	"scenebatch/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps COLMAP model_converter invocations.
type Client struct {
	binary       string
	sparseSubdir string
	timeout      time.Duration
	exec         Executor
}

// New constructs a COLMAP client from the reconstruction configuration section.
func New(cfg config.Reconstruction, opts ...Option) (*Client, error) {
	binary := strings.TrimSpace(cfg.ColmapBinary)
	if binary == "" {
		return nil, errors.New("colmap binary required")
	}
	client := &Client{
		binary:       binary,
		sparseSubdir: strings.Trim(cfg.SparseSubdir, "/"),
		timeout:      time.Duration(cfg.TimeoutSeconds) * time.Second,
		exec:         commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ModelDir returns the sparse-model directory for a scene, or an ErrNotFound
// tagged error when the scene has no reconstruction input.
func (c *Client) ModelDir(scenePath string) (string, error) {
	dir := filepath.Join(scenePath, filepath.FromSlash(c.sparseSubdir))
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", services.Wrap(services.ErrNotFound, "colmap", "locate model", dir, nil)
	}
	return dir, nil
}

// ExportPLY converts the sparse model in modelDir into a PLY file at plyPath.
// Tool failures and timeouts come back tagged, never raised past the caller.
func (c *Client) ExportPLY(ctx context.Context, modelDir, plyPath string) error {
	if strings.TrimSpace(modelDir) == "" {
		return services.Wrap(services.ErrValidation, "colmap", "export ply", "model directory required", nil)
	}
	if strings.TrimSpace(plyPath) == "" {
		return services.Wrap(services.ErrValidation, "colmap", "export ply", "output path required", nil)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{
		"model_converter",
		"--input_path", modelDir,
		"--output_path", plyPath,
		"--output_type", "PLY",
	}

	if err := c.exec.Run(runCtx, c.binary, args); err != nil {
		marker := services.ClassifyContextErr(runCtx.Err())
		return services.Wrap(marker, "colmap", "export ply", fmt.Sprintf("model %s", modelDir), err)
	}
	return nil
}
