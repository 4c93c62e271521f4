package batch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"scenebatch/internal/logging"
	"scenebatch/internal/pipeline"
	"scenebatch/internal/scene"
)

// Stage selectors accepted by RunStage.
const (
	StageAll            = "all"
	StageVideos         = pipeline.StageVideos
	StageReconstruction = pipeline.StageReconstruction
	StageDescriptor     = pipeline.StageDescriptor
)

// Recorder receives each scene's result as it is aggregated. Implementations
// are called from the single collector goroutine, never concurrently.
type Recorder interface {
	RecordScene(ctx context.Context, result pipeline.Result) error
}

// Option configures the scheduler.
type Option func(*Scheduler)

// WithWorkers overrides the worker-pool size. Values below one fall back to
// the default sizing.
func WithWorkers(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logging.NewComponentLogger(logger, "batch")
		}
	}
}

// WithRecorder attaches a per-scene result recorder (the manifest store).
func WithRecorder(rec Recorder) Option {
	return func(s *Scheduler) {
		s.recorder = rec
	}
}

// WithRunID tags every scheduler log line with the manifest run identifier so
// log output correlates with the run's ledger rows.
func WithRunID(id string) Option {
	return func(s *Scheduler) {
		s.runID = id
	}
}

// Scheduler fans the scene pipeline out across a fixed-size worker pool and
// aggregates per-scene results into a batch summary.
type Scheduler struct {
	pipe     *pipeline.Pipeline
	workers  int
	logger   *slog.Logger
	recorder Recorder
	runID    string
}

// DefaultWorkers is the pool size used when none is configured: available
// CPUs minus one, floor one.
func DefaultWorkers() int {
	if n := runtime.NumCPU() - 1; n > 1 {
		return n
	}
	return 1
}

// New constructs a scheduler around a scene pipeline.
func New(pipe *pipeline.Pipeline, opts ...Option) *Scheduler {
	s := &Scheduler{
		pipe:    pipe,
		workers: DefaultWorkers(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runID != "" {
		s.logger = s.logger.With(logging.String(logging.FieldRunID, s.runID))
	}
	return s
}

// Run processes every scene on the worker pool and returns the aggregate.
// Workers own their scene exclusively and report results over a channel; the
// aggregation is commutative, so completion order never changes the summary.
func (s *Scheduler) Run(ctx context.Context, scenes []scene.Scene) Summary {
	s.logger.Info("processing scenes",
		logging.Int("scenes", len(scenes)),
		logging.Int("workers", s.workers))

	jobs := make(chan scene.Scene)
	results := make(chan pipeline.Result)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sc := range jobs {
				results <- s.processGuarded(ctx, sc)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, sc := range scenes {
			select {
			case jobs <- sc:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	agg := newAggregator(len(scenes))
	for result := range results {
		agg.add(result)
		s.record(ctx, result)
	}
	return agg.summary()
}

// RunStage runs exactly one stage sequentially across all scenes, for
// operators re-running a single stage after fixing an upstream problem.
func (s *Scheduler) RunStage(ctx context.Context, scenes []scene.Scene, stage string) (Summary, error) {
	agg := newAggregator(len(scenes))
	for _, sc := range scenes {
		var result pipeline.Result
		switch stage {
		case StageVideos:
			result = pipeline.Result{Scene: sc, Views: s.pipe.SynthesizeVideos(ctx, sc)}
		case StageReconstruction:
			result = pipeline.Result{Scene: sc, PointCloud: s.pipe.ConvertReconstruction(ctx, sc)}
		case StageDescriptor:
			result = pipeline.Result{Scene: sc, Descriptor: s.pipe.WriteDescriptor(ctx, sc, "")}
		default:
			return Summary{}, fmt.Errorf("unknown stage %q", stage)
		}
		agg.add(result)
		s.record(ctx, result)
	}
	return agg.summary(), nil
}

// processGuarded isolates worker failures: a panic inside one scene's
// processing becomes a failed result instead of taking down the batch.
func (s *Scheduler) processGuarded(ctx context.Context, sc scene.Scene) (result pipeline.Result) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scene worker panicked",
				logging.String(logging.FieldScene, sc.ID),
				logging.Any("panic", r))
			result = pipeline.Result{
				Scene:      sc,
				PointCloud: scene.Failed(fmt.Errorf("worker panic: %v", r)),
				Descriptor: scene.Skipped("worker panic"),
			}
		}
	}()
	return s.pipe.Process(ctx, sc)
}

func (s *Scheduler) record(ctx context.Context, result pipeline.Result) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordScene(ctx, result); err != nil {
		s.logger.Warn("could not record scene result",
			logging.String(logging.FieldScene, result.Scene.ID),
			logging.Error(err))
	}
}
