package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"scenebatch/internal/batch"
	"scenebatch/internal/colmap"
	"scenebatch/internal/config"
	"scenebatch/internal/encoder"
	"scenebatch/internal/logging"
	"scenebatch/internal/manifest"
	"scenebatch/internal/pipeline"
	"scenebatch/internal/scene"
)

const lockFileName = ".scenebatch.lock"

func newProcessCommand(configFlag *string) *cobra.Command {
	var stageFlag string
	var workersFlag int

	cmd := &cobra.Command{
		Use:   "process <root>",
		Short: "Process every scene directory under a dataset root",
		Long: `Process discovers scene directories under the given root and runs the
three-stage pipeline over each: per-view video synthesis, sparse-reconstruction
conversion, and scene-descriptor emission. Individual scene failures are
recorded and reported; they never stop the batch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd.Context(), *configFlag, args[0], stageFlag, workersFlag)
		},
	}

	cmd.Flags().StringVar(&stageFlag, "stage", batch.StageAll,
		"Stage to run: all, videos, reconstruction, or descriptor")
	cmd.Flags().IntVar(&workersFlag, "workers", 0,
		"Worker count for parallel batches (0 uses available CPUs minus one)")

	return cmd
}

func runProcess(ctx context.Context, configPath, root, stage string, workers int) error {
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	root, err = config.ExpandPath(root)
	if err != nil {
		return err
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return fmt.Errorf("scene root %q is not a directory", root)
	}

	stage = strings.ToLower(strings.TrimSpace(stage))
	switch stage {
	case batch.StageAll, batch.StageVideos, batch.StageReconstruction, batch.StageDescriptor:
	default:
		return fmt.Errorf("invalid stage %q (want all, videos, reconstruction, or descriptor)", stage)
	}

	// One batch per dataset root at a time; overlapping runs would race on
	// the shared derived-artifact paths.
	lock := flock.New(filepath.Join(root, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire dataset lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another scenebatch run holds the lock for %s", root)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	scenes, err := scene.Discover(root, cfg.Batch.ScenePrefix)
	if err != nil {
		return err
	}
	if len(scenes) == 0 {
		logger.Warn("no scene directories found",
			logging.String("root", root),
			logging.String("prefix", cfg.Batch.ScenePrefix))
	}

	enc, err := encoder.New(cfg.Video)
	if err != nil {
		return err
	}
	col, err := colmap.New(cfg.Reconstruction)
	if err != nil {
		return err
	}
	naming, err := scene.NamingFor(cfg.Batch.Naming)
	if err != nil {
		return err
	}
	pipe := pipeline.New(enc, col, naming, logger)

	if workers <= 0 {
		workers = cfg.Batch.Workers
	}
	if workers <= 0 {
		workers = batch.DefaultWorkers()
	}

	opts := []batch.Option{batch.WithLogger(logger), batch.WithWorkers(workers)}

	var store *manifest.Store
	if cfg.Manifest.Enabled {
		store, err = manifest.Open(cfg.Manifest.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		runID, err := store.BeginRun(ctx, root, stage, workers)
		if err != nil {
			return err
		}
		logger.Info("manifest run started",
			logging.String(logging.FieldRunID, runID),
			logging.String("path", store.Path()))
		opts = append(opts, batch.WithRecorder(store), batch.WithRunID(runID))
	}

	scheduler := batch.New(pipe, opts...)

	var summary batch.Summary
	if stage == batch.StageAll {
		summary = scheduler.Run(ctx, scenes)
	} else {
		summary, err = scheduler.RunStage(ctx, scenes, stage)
		if err != nil {
			return err
		}
	}

	if store != nil {
		if err := store.FinishRun(ctx, summary.VideoCount(), summary.DescriptorCount()); err != nil {
			logger.Warn("could not finalize manifest run", logging.Error(err))
		}
	}

	printSummary(os.Stdout, stage, summary)
	return nil
}
