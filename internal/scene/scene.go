package scene

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ImagesDirName is the fixed subdirectory holding per-view image sequences.
const ImagesDirName = "images"

// Scene is one capture session's directory. The identifier is the directory
// base name; derived artifacts land beside the source data.
type Scene struct {
	Path string
	ID   string
}

// FromPath builds a Scene from its directory path.
func FromPath(path string) Scene {
	return Scene{Path: path, ID: filepath.Base(path)}
}

// ImagesDir returns the scene's image-view root.
func (s Scene) ImagesDir() string {
	return filepath.Join(s.Path, ImagesDirName)
}

// ViewDir returns the directory of one camera view.
func (s Scene) ViewDir(view string) string {
	return filepath.Join(s.ImagesDir(), view)
}

// Views lists the scene's camera-view subfolder names in lexical order.
// A missing images root returns fs.ErrNotExist so callers can treat it as a
// skip rather than a failure.
func (s Scene) Views() ([]string, error) {
	entries, err := os.ReadDir(s.ImagesDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fs.ErrNotExist
		}
		return nil, fmt.Errorf("read images dir: %w", err)
	}
	views := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			views = append(views, entry.Name())
		}
	}
	sort.Strings(views)
	return views, nil
}

// Discover enumerates the immediate subdirectories of root whose names carry
// the scene prefix, in lexical order.
func Discover(root, prefix string) ([]Scene, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read scene root %q: %w", root, err)
	}
	scenes := make([]Scene, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if prefix != "" && !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		scenes = append(scenes, FromPath(filepath.Join(root, entry.Name())))
	}
	sort.Slice(scenes, func(i, j int) bool { return scenes[i].ID < scenes[j].ID })
	return scenes, nil
}
