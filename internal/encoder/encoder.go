package encoder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
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

// Client wraps ffmpeg invocations that turn an image sequence into a video.
// Frame order is the lexical order of the matched filenames because ffmpeg
// expands the glob pattern sorted.
type Client struct {
	binary      string
	frameRate   int
	crf         int
	pixelFormat string
	imageExt    string
	timeout     time.Duration
	exec        Executor
}

// New constructs an encoder client from the video configuration section.
func New(cfg config.Video, opts ...Option) (*Client, error) {
	binary := strings.TrimSpace(cfg.FFmpegBinary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	if cfg.FrameRate <= 0 {
		return nil, fmt.Errorf("frame rate must be positive (got %d)", cfg.FrameRate)
	}
	client := &Client{
		binary:      binary,
		frameRate:   cfg.FrameRate,
		crf:         cfg.CRF,
		pixelFormat: cfg.PixelFormat,
		imageExt:    strings.TrimPrefix(cfg.ImageExtension, "."),
		timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		exec:        commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ImageExtension returns the extension (without dot) of the frames consumed.
func (c *Client) ImageExtension() string {
	return c.imageExt
}

// Synthesize encodes every image in imageDir into one H.264 video at
// outputPath, overwriting any existing file there. A non-zero tool exit or a
// timeout is returned as an ErrExternalTool/ErrTimeout tagged error; the
// caller treats it as data, not as a reason to stop the batch.
func (c *Client) Synthesize(ctx context.Context, imageDir, outputPath string) error {
	if strings.TrimSpace(imageDir) == "" {
		return services.Wrap(services.ErrValidation, "encoder", "synthesize", "image directory required", nil)
	}
	if strings.TrimSpace(outputPath) == "" {
		return services.Wrap(services.ErrValidation, "encoder", "synthesize", "output path required", nil)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{
		"-y",
		"-framerate", strconv.Itoa(c.frameRate),
		"-pattern_type", "glob",
		"-i", filepath.Join(imageDir, "*."+c.imageExt),
		"-c:v", "libx264",
		"-pix_fmt", c.pixelFormat,
		"-crf", strconv.Itoa(c.crf),
		outputPath,
	}

	if err := c.exec.Run(runCtx, c.binary, args); err != nil {
		marker := services.ClassifyContextErr(runCtx.Err())
		return services.Wrap(marker, "encoder", "synthesize", filepath.Base(outputPath), err)
	}
	return nil
}
