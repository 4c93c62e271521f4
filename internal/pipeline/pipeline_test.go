package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scenebatch/internal/colmap"
	"scenebatch/internal/config"
	"scenebatch/internal/encoder"
	"scenebatch/internal/logging"
	"scenebatch/internal/pipeline"
	"scenebatch/internal/scene"
	"scenebatch/internal/testsupport"
)

// encoderExec records invocations and fails views whose output path contains
// a marker substring.
type encoderExec struct {
	calls    []string
	failWhen string
}

func (e *encoderExec) Run(_ context.Context, _ string, args []string) error {
	output := args[len(args)-1]
	e.calls = append(e.calls, output)
	if e.failWhen != "" && strings.Contains(output, e.failWhen) {
		return errors.New("encoder exit status 1")
	}
	return nil
}

// colmapExec emulates model_converter by writing a small PLY at the
// requested output path.
type colmapExec struct {
	t        *testing.T
	fail     bool
	failLate bool // write the PLY, then report failure
}

func (c *colmapExec) Run(_ context.Context, _ string, args []string) error {
	c.t.Helper()
	var output string
	for i, arg := range args {
		if arg == "--output_path" && i+1 < len(args) {
			output = args[i+1]
		}
	}
	if c.fail {
		return errors.New("colmap exit status 1")
	}
	testsupport.WriteASCIIPLY(c.t, output)
	if c.failLate {
		return errors.New("colmap exit status 1")
	}
	return nil
}

func newTestPipeline(t *testing.T, encExec encoder.Executor, colExec colmap.Executor) *pipeline.Pipeline {
	t.Helper()

	cfg := config.Default()
	enc, err := encoder.New(cfg.Video, encoder.WithExecutor(encExec))
	if err != nil {
		t.Fatalf("encoder.New: %v", err)
	}
	col, err := colmap.New(cfg.Reconstruction, colmap.WithExecutor(colExec))
	if err != nil {
		t.Fatalf("colmap.New: %v", err)
	}
	return pipeline.New(enc, col, scene.SceneNaming(), logging.NewNop())
}

func TestProcessFullScene(t *testing.T) {
	root := t.TempDir()
	scenePath := testsupport.WriteSceneTree(t, root, "scene_001", []string{"front_forward"}, "colmap_sparse/rig")
	sc := scene.FromPath(scenePath)

	pipe := newTestPipeline(t, &encoderExec{}, &colmapExec{t: t})
	result := pipe.Process(context.Background(), sc)

	videos := result.VideoPaths()
	if len(videos) != 1 {
		t.Fatalf("videos %v, want one", videos)
	}
	if videos[0] != filepath.Join(scenePath, "scene_001_front_forward.mp4") {
		t.Fatalf("unexpected video path %q", videos[0])
	}

	if !result.PointCloud.OK() {
		t.Fatalf("point cloud outcome: %+v", result.PointCloud)
	}
	if result.PointCloud.Path != filepath.Join(scenePath, "scene_001.pcd") {
		t.Fatalf("pcd path %q", result.PointCloud.Path)
	}
	if _, err := os.Stat(result.PointCloud.Path); err != nil {
		t.Fatalf("pcd not on disk: %v", err)
	}

	if !result.Descriptor.OK() {
		t.Fatalf("descriptor outcome: %+v", result.Descriptor)
	}
	if _, err := os.Stat(filepath.Join(scenePath, "scene_001.fo3d")); err != nil {
		t.Fatalf("descriptor not on disk: %v", err)
	}

	if _, err := os.Stat(filepath.Join(scenePath, "model.ply")); !os.IsNotExist(err) {
		t.Fatalf("intermediate ply should be removed: %v", err)
	}
}

func TestProcessSceneWithoutImages(t *testing.T) {
	root := t.TempDir()
	scenePath := testsupport.WriteSceneTree(t, root, "scene_002", nil, "colmap_sparse/rig")
	sc := scene.FromPath(scenePath)

	enc := &encoderExec{}
	pipe := newTestPipeline(t, enc, &colmapExec{t: t})
	result := pipe.Process(context.Background(), sc)

	if len(result.Views) != 0 {
		t.Fatalf("expected no view results, got %v", result.Views)
	}
	if len(enc.calls) != 0 {
		t.Fatalf("encoder should not run without images, calls: %v", enc.calls)
	}
	if !result.PointCloud.OK() || !result.Descriptor.OK() {
		t.Fatalf("expected pcd and descriptor success: %+v / %+v", result.PointCloud, result.Descriptor)
	}
}

func TestProcessShortCircuitsOnMissingReconstruction(t *testing.T) {
	root := t.TempDir()
	scenePath := testsupport.WriteSceneTree(t, root, "scene_003", []string{"front_forward", "rear"}, "")
	sc := scene.FromPath(scenePath)

	pipe := newTestPipeline(t, &encoderExec{}, &colmapExec{t: t})
	result := pipe.Process(context.Background(), sc)

	if len(result.VideoPaths()) != 2 {
		t.Fatalf("videos %v, want two", result.VideoPaths())
	}
	if result.PointCloud.Status != scene.StatusSkipped {
		t.Fatalf("point cloud outcome: %+v", result.PointCloud)
	}
	if result.Descriptor.Status != scene.StatusSkipped {
		t.Fatalf("descriptor should be skipped: %+v", result.Descriptor)
	}
	if _, err := os.Stat(filepath.Join(scenePath, "scene_003.fo3d")); !os.IsNotExist(err) {
		t.Fatalf("descriptor file should not exist: %v", err)
	}
}

func TestProcessDescriptorNeverRunsAfterConverterFailure(t *testing.T) {
	root := t.TempDir()
	scenePath := testsupport.WriteSceneTree(t, root, "scene_004", nil, "colmap_sparse/rig")
	sc := scene.FromPath(scenePath)

	pipe := newTestPipeline(t, &encoderExec{}, &colmapExec{t: t, fail: true})
	result := pipe.Process(context.Background(), sc)

	if result.PointCloud.Status != scene.StatusFailed {
		t.Fatalf("point cloud outcome: %+v", result.PointCloud)
	}
	if result.Descriptor.OK() {
		t.Fatalf("descriptor must not succeed: %+v", result.Descriptor)
	}
}

func TestConvertReconstructionCleansUpPLYOnFailure(t *testing.T) {
	root := t.TempDir()
	scenePath := testsupport.WriteSceneTree(t, root, "scene_005", nil, "colmap_sparse/rig")
	sc := scene.FromPath(scenePath)

	pipe := newTestPipeline(t, &encoderExec{}, &colmapExec{t: t, failLate: true})
	outcome := pipe.ConvertReconstruction(context.Background(), sc)

	if outcome.Status != scene.StatusFailed {
		t.Fatalf("outcome: %+v", outcome)
	}
	if _, err := os.Stat(filepath.Join(scenePath, "model.ply")); !os.IsNotExist(err) {
		t.Fatalf("intermediate ply should be removed on failure too: %v", err)
	}
}

func TestSynthesizeVideosSkipsEmptyView(t *testing.T) {
	root := t.TempDir()
	scenePath := testsupport.WriteSceneTree(t, root, "scene_006", []string{"front_forward"}, "")
	if err := os.MkdirAll(filepath.Join(scenePath, "images", "empty_view"), 0o755); err != nil {
		t.Fatalf("mkdir empty view: %v", err)
	}
	sc := scene.FromPath(scenePath)

	enc := &encoderExec{}
	pipe := newTestPipeline(t, enc, &colmapExec{t: t})
	views := pipe.SynthesizeVideos(context.Background(), sc)

	if len(views) != 2 {
		t.Fatalf("view results %v, want two", views)
	}
	byView := map[string]scene.Outcome{}
	for _, v := range views {
		byView[v.View] = v.Outcome
	}
	if byView["empty_view"].Status != scene.StatusSkipped {
		t.Fatalf("empty view outcome: %+v", byView["empty_view"])
	}
	if !byView["front_forward"].OK() {
		t.Fatalf("front_forward outcome: %+v", byView["front_forward"])
	}
	if len(enc.calls) != 1 {
		t.Fatalf("encoder calls %v, want one", enc.calls)
	}
}

func TestSynthesizeVideosRecordsPerViewFailure(t *testing.T) {
	root := t.TempDir()
	scenePath := testsupport.WriteSceneTree(t, root, "scene_007", []string{"front_forward", "rear"}, "")
	sc := scene.FromPath(scenePath)

	pipe := newTestPipeline(t, &encoderExec{failWhen: "rear"}, &colmapExec{t: t})
	views := pipe.SynthesizeVideos(context.Background(), sc)

	var ok, failed int
	for _, v := range views {
		switch v.Outcome.Status {
		case scene.StatusSuccess:
			ok++
		case scene.StatusFailed:
			failed++
		}
	}
	if ok != 1 || failed != 1 {
		t.Fatalf("ok=%d failed=%d, want 1/1: %+v", ok, failed, views)
	}
}

func TestWriteDescriptorStandaloneSkipsMissingPointCloud(t *testing.T) {
	root := t.TempDir()
	scenePath := testsupport.WriteSceneTree(t, root, "scene_008", nil, "")
	sc := scene.FromPath(scenePath)

	pipe := newTestPipeline(t, &encoderExec{}, &colmapExec{t: t})
	outcome := pipe.WriteDescriptor(context.Background(), sc, "")

	if outcome.Status != scene.StatusSkipped {
		t.Fatalf("outcome: %+v", outcome)
	}
}

func TestProcessIsIdempotent(t *testing.T) {
	root := t.TempDir()
	scenePath := testsupport.WriteSceneTree(t, root, "scene_009", []string{"front_forward"}, "colmap_sparse/rig")
	sc := scene.FromPath(scenePath)

	pipe := newTestPipeline(t, &encoderExec{}, &colmapExec{t: t})
	first := pipe.Process(context.Background(), sc)
	second := pipe.Process(context.Background(), sc)

	if len(first.VideoPaths()) != len(second.VideoPaths()) {
		t.Fatalf("video sets differ: %v vs %v", first.VideoPaths(), second.VideoPaths())
	}
	if first.PointCloud.Path != second.PointCloud.Path {
		t.Fatalf("pcd paths differ: %q vs %q", first.PointCloud.Path, second.PointCloud.Path)
	}
	if first.Descriptor.Path != second.Descriptor.Path {
		t.Fatalf("descriptor paths differ: %q vs %q", first.Descriptor.Path, second.Descriptor.Path)
	}
}
