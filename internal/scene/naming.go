package scene

import (
	"fmt"
	"path/filepath"
)

// Naming policy selectors accepted in configuration.
const (
	PolicyScene   = "scene"
	PolicyGeneric = "generic"
)

// Naming maps a scene identifier to the filenames of its derived artifacts.
// Parameterizing the pipeline over this policy is what keeps one pipeline
// serving both scene-prefixed and generic artifact layouts.
type Naming struct {
	Video           func(sceneID, view string) string
	IntermediatePLY func(sceneID string) string
	PointCloud      func(sceneID string) string
	Descriptor      func(sceneID string) string
}

// SceneNaming prefixes artifacts with the scene identifier, e.g.
// scene_001_front_forward.mp4 and scene_001.pcd.
func SceneNaming() Naming {
	return Naming{
		Video:           func(sceneID, view string) string { return sceneID + "_" + view + ".mp4" },
		IntermediatePLY: func(string) string { return "model.ply" },
		PointCloud:      func(sceneID string) string { return sceneID + ".pcd" },
		Descriptor:      func(sceneID string) string { return sceneID + ".fo3d" },
	}
}

// GenericNaming uses fixed artifact names independent of the scene identifier.
func GenericNaming() Naming {
	return Naming{
		Video:           func(_, view string) string { return view + ".mp4" },
		IntermediatePLY: func(string) string { return "model.ply" },
		PointCloud:      func(string) string { return "points.pcd" },
		Descriptor:      func(string) string { return "scene.fo3d" },
	}
}

// NamingFor resolves a configured policy name. An empty name selects the
// scene-prefixed policy.
func NamingFor(policy string) (Naming, error) {
	switch policy {
	case PolicyScene, "":
		return SceneNaming(), nil
	case PolicyGeneric:
		return GenericNaming(), nil
	default:
		return Naming{}, fmt.Errorf("unknown naming policy %q (want %s or %s)", policy, PolicyScene, PolicyGeneric)
	}
}

// VideoPath resolves the full output path of one view's video.
func (n Naming) VideoPath(s Scene, view string) string {
	return filepath.Join(s.Path, n.Video(s.ID, view))
}

// IntermediatePLYPath resolves the scratch PLY location for a scene.
func (n Naming) IntermediatePLYPath(s Scene) string {
	return filepath.Join(s.Path, n.IntermediatePLY(s.ID))
}

// PointCloudPath resolves the PCD output location for a scene.
func (n Naming) PointCloudPath(s Scene) string {
	return filepath.Join(s.Path, n.PointCloud(s.ID))
}

// DescriptorPath resolves the scene-descriptor output location for a scene.
func (n Naming) DescriptorPath(s Scene) string {
	return filepath.Join(s.Path, n.Descriptor(s.ID))
}
