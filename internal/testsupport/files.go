package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteImages populates a view directory with count tiny image placeholders.
func WriteImages(t testing.TB, viewDir string, count int, ext string) {
	t.Helper()

	for i := 0; i < count; i++ {
		WriteFile(t, filepath.Join(viewDir, fmt.Sprintf("frame_%04d.%s", i, ext)), 16)
	}
}

// WriteSceneTree lays out one scene directory under root: an images/ tree
// with the named views (five frames each) and, when withModel is set, a
// sparse-model directory at modelSubdir.
func WriteSceneTree(t testing.TB, root, sceneID string, views []string, modelSubdir string) string {
	t.Helper()

	scenePath := filepath.Join(root, sceneID)
	for _, view := range views {
		WriteImages(t, filepath.Join(scenePath, "images", view), 5, "jpeg")
	}
	if modelSubdir != "" {
		modelDir := filepath.Join(scenePath, filepath.FromSlash(modelSubdir))
		WriteFile(t, filepath.Join(modelDir, "points3D.bin"), 8)
	}
	if err := os.MkdirAll(scenePath, 0o755); err != nil {
		t.Fatalf("mkdir scene %s: %v", scenePath, err)
	}
	return scenePath
}

// WriteASCIIPLY writes a small two-point colored ascii PLY file.
func WriteASCIIPLY(t testing.TB, path string) {
	t.Helper()

	const payload = `ply
format ascii 1.0
element vertex 2
property float x
property float y
property float z
property uchar red
property uchar green
property uchar blue
end_header
1.5 -2.25 0.5 255 0 0
0 4.75 -1 0 128 255
`
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
