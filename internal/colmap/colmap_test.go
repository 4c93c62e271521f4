package colmap_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"scenebatch/internal/colmap"
	"scenebatch/internal/config"
	"scenebatch/internal/services"
)

type fakeExecutor struct {
	binary string
	args   []string
	err    error
}

func (f *fakeExecutor) Run(_ context.Context, binary string, args []string) error {
	f.binary = binary
	f.args = args
	return f.err
}

func reconConfig() config.Reconstruction {
	return config.Reconstruction{
		ColmapBinary: "colmap",
		SparseSubdir: "colmap_sparse/rig",
	}
}

func TestModelDir(t *testing.T) {
	client, err := colmap.New(reconConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	scenePath := t.TempDir()
	if _, err := client.ModelDir(scenePath); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing model, got %v", err)
	}

	modelDir := filepath.Join(scenePath, "colmap_sparse", "rig")
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		t.Fatalf("mkdir model: %v", err)
	}
	got, err := client.ModelDir(scenePath)
	if err != nil {
		t.Fatalf("ModelDir: %v", err)
	}
	if got != modelDir {
		t.Fatalf("model dir %q, want %q", got, modelDir)
	}
}

func TestExportPLYBuildsCommand(t *testing.T) {
	exec := &fakeExecutor{}
	client, err := colmap.New(reconConfig(), colmap.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := client.ExportPLY(context.Background(), "/scene/colmap_sparse/rig", "/scene/model.ply"); err != nil {
		t.Fatalf("ExportPLY: %v", err)
	}

	if exec.binary != "colmap" {
		t.Fatalf("binary %q", exec.binary)
	}
	want := []string{
		"model_converter",
		"--input_path", "/scene/colmap_sparse/rig",
		"--output_path", "/scene/model.ply",
		"--output_type", "PLY",
	}
	if !reflect.DeepEqual(exec.args, want) {
		t.Fatalf("args\n got %v\nwant %v", exec.args, want)
	}
}

func TestExportPLYToolFailureIsTagged(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("exit status 1")}
	client, err := colmap.New(reconConfig(), colmap.WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = client.ExportPLY(context.Background(), "/in", "/out.ply")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
}
