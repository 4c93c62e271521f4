package config

const (
	defaultFFmpegBinary          = "ffmpeg"
	defaultFrameRate             = 10
	defaultCRF                   = 23
	defaultPixelFormat           = "yuv420p"
	defaultImageExtension        = "jpeg"
	defaultVideoTimeoutSeconds   = 600
	defaultColmapBinary          = "colmap"
	defaultSparseSubdir          = "colmap_sparse/rig"
	defaultConvertTimeoutSeconds = 600
	defaultScenePrefix           = "scene_"
	defaultNamingPolicy          = "scene"
	defaultManifestPath          = "~/.local/share/scenebatch/manifest.db"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Video: Video{
			FFmpegBinary:   defaultFFmpegBinary,
			FrameRate:      defaultFrameRate,
			CRF:            defaultCRF,
			PixelFormat:    defaultPixelFormat,
			ImageExtension: defaultImageExtension,
			TimeoutSeconds: defaultVideoTimeoutSeconds,
		},
		Reconstruction: Reconstruction{
			ColmapBinary:   defaultColmapBinary,
			SparseSubdir:   defaultSparseSubdir,
			TimeoutSeconds: defaultConvertTimeoutSeconds,
		},
		Batch: Batch{
			ScenePrefix: defaultScenePrefix,
			Workers:     0, // resolved at runtime to NumCPU-1, floor 1
			Naming:      defaultNamingPolicy,
		},
		Manifest: Manifest{
			Enabled: false,
			Path:    defaultManifestPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
