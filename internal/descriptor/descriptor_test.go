package descriptor_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"scenebatch/internal/descriptor"
	"scenebatch/internal/testsupport"
)

func TestWriteCreatesSceneGraph(t *testing.T) {
	sceneDir := filepath.Join(t.TempDir(), "scene_001")
	pcdPath := filepath.Join(sceneDir, "scene_001.pcd")
	testsupport.WriteFile(t, pcdPath, 32)

	outputPath, err := descriptor.Write(pcdPath, "scene_001", "")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if outputPath != filepath.Join(sceneDir, "scene_001.fo3d") {
		t.Fatalf("output path %q", outputPath)
	}

	payload, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("read descriptor: %v", err)
	}

	var graph struct {
		Type     string `json:"_type"`
		UUID     string `json:"uuid"`
		Children []struct {
			Type    string `json:"_type"`
			Name    string `json:"name"`
			Visible bool   `json:"visible"`
			PCDPath string `json:"pcdPath"`
		} `json:"children"`
	}
	if err := json.Unmarshal(payload, &graph); err != nil {
		t.Fatalf("decode descriptor: %v", err)
	}
	if graph.Type != "Scene" || graph.UUID == "" {
		t.Fatalf("unexpected root node: %+v", graph)
	}
	if len(graph.Children) != 1 {
		t.Fatalf("expected exactly one child, got %d", len(graph.Children))
	}
	child := graph.Children[0]
	if child.Type != "PointCloud" || child.Name != "scene_001" || !child.Visible {
		t.Fatalf("unexpected point-cloud node: %+v", child)
	}
	if child.PCDPath != pcdPath {
		t.Fatalf("pcd path %q, want %q", child.PCDPath, pcdPath)
	}
}

func TestWriteDerivesNameFromDirectory(t *testing.T) {
	sceneDir := filepath.Join(t.TempDir(), "scene_007")
	pcdPath := filepath.Join(sceneDir, "points.pcd")
	testsupport.WriteFile(t, pcdPath, 8)

	outputPath, err := descriptor.Write(pcdPath, "", "")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Base(outputPath) != "scene_007.fo3d" {
		t.Fatalf("output name %q", filepath.Base(outputPath))
	}
}

func TestWriteOverwritesExisting(t *testing.T) {
	sceneDir := filepath.Join(t.TempDir(), "scene_001")
	pcdPath := filepath.Join(sceneDir, "scene_001.pcd")
	testsupport.WriteFile(t, pcdPath, 8)

	first, err := descriptor.Write(pcdPath, "scene_001", "")
	if err != nil {
		t.Fatalf("first Write: %v", err)
	}
	second, err := descriptor.Write(pcdPath, "scene_001", "")
	if err != nil {
		t.Fatalf("second Write: %v", err)
	}
	if first != second {
		t.Fatalf("paths differ across runs: %q vs %q", first, second)
	}
}

func TestWriteRequiresPCDPath(t *testing.T) {
	if _, err := descriptor.Write("", "scene_001", ""); err == nil {
		t.Fatal("expected error for empty pcd path")
	}
}
