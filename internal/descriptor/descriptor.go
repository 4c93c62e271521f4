package descriptor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"scenebatch/internal/services"
)

// Extension is the scene-descriptor file suffix.
const Extension = ".fo3d"

// sceneGraph is the serialized form of a 3D scene description. The layout
// matches what downstream visualization tooling expects: a root node with a
// default camera and a flat list of child nodes.
type sceneGraph struct {
	Type     string      `json:"_type"`
	UUID     string      `json:"uuid"`
	Camera   sceneCamera `json:"camera"`
	Children []sceneNode `json:"children"`
}

type sceneCamera struct {
	Type string `json:"_type"`
	Up   string `json:"up"`
}

type sceneNode struct {
	Type       string     `json:"_type"`
	UUID       string     `json:"uuid"`
	Name       string     `json:"name"`
	Visible    bool       `json:"visible"`
	Position   [3]float64 `json:"position"`
	Quaternion [4]float64 `json:"quaternion"`
	Scale      [3]float64 `json:"scale"`
	PCDPath    string     `json:"pcdPath"`
}

// Write wraps one point-cloud file into a scene descriptor. The scene graph
// holds exactly one point-cloud node carrying the display name; an empty name
// falls back to the scene directory's base name. An empty outputPath places
// the descriptor beside the point cloud, named after the display name. Any
// existing descriptor is overwritten.
func Write(pcdPath, name, outputPath string) (string, error) {
	if strings.TrimSpace(pcdPath) == "" {
		return "", services.Wrap(services.ErrValidation, "descriptor", "write", "pcd path required", nil)
	}

	sceneDir := filepath.Dir(pcdPath)
	sceneID := strings.TrimSpace(name)
	if sceneID == "" {
		sceneID = filepath.Base(sceneDir)
	}
	if strings.TrimSpace(outputPath) == "" {
		outputPath = filepath.Join(sceneDir, sceneID+Extension)
	}

	graph := sceneGraph{
		Type:   "Scene",
		UUID:   uuid.NewString(),
		Camera: sceneCamera{Type: "PerspectiveCamera", Up: "Z"},
		Children: []sceneNode{
			{
				Type:       "PointCloud",
				UUID:       uuid.NewString(),
				Name:       sceneID,
				Visible:    true,
				Quaternion: [4]float64{0, 0, 0, 1},
				Scale:      [3]float64{1, 1, 1},
				PCDPath:    pcdPath,
			},
		},
	}

	payload, err := json.MarshalIndent(graph, "", "  ")
	if err != nil {
		return "", services.Wrap(services.ErrCodec, "descriptor", "encode scene graph", sceneID, err)
	}

	if err := os.WriteFile(outputPath, payload, 0o644); err != nil {
		return "", services.Wrap(services.ErrCodec, "descriptor", "write", fmt.Sprintf("scene %s", sceneID), err)
	}
	return outputPath, nil
}
