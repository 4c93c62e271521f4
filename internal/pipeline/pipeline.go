package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"scenebatch/internal/colmap"
	"scenebatch/internal/descriptor"
	"scenebatch/internal/encoder"
	"scenebatch/internal/logging"
	"scenebatch/internal/pointcloud"
	"scenebatch/internal/scene"
	"scenebatch/internal/services"
)

// Stage names used in logs and the manifest.
const (
	StageVideos         = "videos"
	StageReconstruction = "reconstruction"
	StageDescriptor     = "descriptor"
)

// ViewResult pairs a camera view with its synthesis outcome.
type ViewResult struct {
	View    string
	Outcome scene.Outcome
}

// Result is the complete report for one scene. Stage failures are absorbed
// into outcomes; Process never returns an error and never panics outward.
type Result struct {
	Scene      scene.Scene
	Views      []ViewResult
	PointCloud scene.Outcome
	Descriptor scene.Outcome
}

// VideoPaths returns the paths of the videos that were actually produced.
func (r Result) VideoPaths() []string {
	paths := make([]string, 0, len(r.Views))
	for _, v := range r.Views {
		if v.Outcome.OK() {
			paths = append(paths, v.Outcome.Path)
		}
	}
	return paths
}

// Pipeline runs the three per-scene stages in order: video synthesis,
// reconstruction conversion, descriptor emission.
type Pipeline struct {
	encoder *encoder.Client
	colmap  *colmap.Client
	naming  scene.Naming
	pcdType pointcloud.PCDType
	logger  *slog.Logger
}

// New assembles a pipeline from its stage clients.
func New(enc *encoder.Client, col *colmap.Client, naming scene.Naming, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		encoder: enc,
		colmap:  col,
		naming:  naming,
		pcdType: pointcloud.PCDBinary,
		logger:  logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Process runs all stages for one scene. The descriptor stage only runs after
// a successful reconstruction conversion; everything downstream of a failed
// stage is reported as skipped, and the batch carries on regardless.
func (p *Pipeline) Process(ctx context.Context, sc scene.Scene) Result {
	ctx = logging.WithScene(ctx, sc.ID)
	log := logging.WithContext(ctx, p.logger)
	log.Info("processing scene")

	result := Result{Scene: sc}
	result.Views = p.SynthesizeVideos(ctx, sc)

	result.PointCloud = p.ConvertReconstruction(ctx, sc)
	if !result.PointCloud.OK() {
		log.Warn("reconstruction unavailable, descriptor stage skipped",
			logging.String("status", string(result.PointCloud.Status)),
			logging.String("reason", result.PointCloud.Reason))
		result.Descriptor = scene.Skipped("no point cloud")
		return result
	}

	result.Descriptor = p.WriteDescriptor(ctx, sc, result.PointCloud.Path)
	return result
}

// SynthesizeVideos runs the encoder once per camera view. A missing images
// root is a logged skip that yields no view results at all.
func (p *Pipeline) SynthesizeVideos(ctx context.Context, sc scene.Scene) []ViewResult {
	ctx = logging.WithScene(logging.WithStage(ctx, StageVideos), sc.ID)
	log := logging.WithContext(ctx, p.logger)

	views, err := sc.Views()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Info("no images directory, skipping video synthesis")
		} else {
			log.Warn("cannot enumerate views", logging.Error(err))
		}
		return nil
	}

	results := make([]ViewResult, 0, len(views))
	for _, view := range views {
		results = append(results, ViewResult{View: view, Outcome: p.synthesizeView(ctx, sc, view)})
	}
	return results
}

func (p *Pipeline) synthesizeView(ctx context.Context, sc scene.Scene, view string) scene.Outcome {
	log := logging.WithContext(ctx, p.logger).With(logging.String(logging.FieldView, view))

	viewDir := sc.ViewDir(view)
	matches, err := filepath.Glob(filepath.Join(viewDir, "*."+p.encoder.ImageExtension()))
	if err == nil && len(matches) == 0 {
		log.Info("view has no matching images, skipping")
		return scene.Skipped("no matching images")
	}

	outputPath := p.naming.VideoPath(sc, view)
	if err := p.encoder.Synthesize(ctx, viewDir, outputPath); err != nil {
		log.Error("video synthesis failed", logging.Error(err))
		return scene.Failed(err)
	}
	log.Info("created video", logging.String("path", outputPath))
	return scene.Succeeded(outputPath)
}

// ConvertReconstruction turns the scene's sparse model into a PCD file via a
// scratch PLY. The scratch file is removed on success and failure alike.
func (p *Pipeline) ConvertReconstruction(ctx context.Context, sc scene.Scene) scene.Outcome {
	ctx = logging.WithScene(logging.WithStage(ctx, StageReconstruction), sc.ID)
	log := logging.WithContext(ctx, p.logger)

	modelDir, err := p.colmap.ModelDir(sc.Path)
	if err != nil {
		log.Info("no sparse reconstruction, skipping conversion")
		return scene.Skipped("no sparse reconstruction")
	}

	plyPath := p.naming.IntermediatePLYPath(sc)
	defer func() {
		if err := os.Remove(plyPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn("could not remove intermediate ply", logging.Error(err))
		}
	}()

	if err := p.colmap.ExportPLY(ctx, modelDir, plyPath); err != nil {
		log.Error("sparse model conversion failed", logging.Error(err))
		return scene.Failed(err)
	}

	pcdPath := p.naming.PointCloudPath(sc)
	if err := pointcloud.ConvertPLYToPCD(plyPath, pcdPath, p.pcdType); err != nil {
		err = services.Wrap(services.ErrCodec, "pointcloud", "convert", sc.ID, err)
		log.Error("point cloud conversion failed", logging.Error(err))
		return scene.Failed(err)
	}

	log.Info("created point cloud", logging.String("path", pcdPath))
	return scene.Succeeded(pcdPath)
}

// WriteDescriptor wraps the scene's point cloud into a descriptor file. In
// selective stage mode the point cloud may be absent; that is a skip.
func (p *Pipeline) WriteDescriptor(ctx context.Context, sc scene.Scene, pcdPath string) scene.Outcome {
	ctx = logging.WithScene(logging.WithStage(ctx, StageDescriptor), sc.ID)
	log := logging.WithContext(ctx, p.logger)

	if pcdPath == "" {
		pcdPath = p.naming.PointCloudPath(sc)
	}
	if _, err := os.Stat(pcdPath); err != nil {
		log.Info("point cloud not found, skipping descriptor", logging.String("path", pcdPath))
		return scene.Skipped("point cloud not found")
	}

	outputPath, err := descriptor.Write(pcdPath, sc.ID, p.naming.DescriptorPath(sc))
	if err != nil {
		log.Error("descriptor write failed", logging.Error(err))
		return scene.Failed(err)
	}
	log.Info("created scene descriptor", logging.String("path", outputPath))
	return scene.Succeeded(outputPath)
}
