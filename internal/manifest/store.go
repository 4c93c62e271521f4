package manifest

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"scenebatch/internal/pipeline"
	"scenebatch/internal/scene"
)

// Store persists batch runs and per-scene outcomes to SQLite.
type Store struct {
	db    *sql.DB
	path  string
	runID string
}

// Open initializes or connects to the manifest database and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure manifest directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applySchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// BeginRun inserts a run row and makes it the target of subsequent
// RecordScene calls. Returns the run identifier.
func (s *Store) BeginRun(ctx context.Context, root, stage string, workers int) (string, error) {
	runID := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, root, stage, workers, started_at) VALUES (?, ?, ?, ?, ?)`,
		runID, root, stage, workers, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	s.runID = runID
	return runID, nil
}

// RecordScene stores one scene's stage outcomes under the active run. It is
// called from the scheduler's collector goroutine only.
func (s *Store) RecordScene(ctx context.Context, result pipeline.Result) error {
	if s.runID == "" {
		return fmt.Errorf("no active run")
	}

	videosCreated := 0
	videosFailed := 0
	for _, view := range result.Views {
		switch view.Outcome.Status {
		case scene.StatusSuccess:
			videosCreated++
		case scene.StatusFailed:
			videosFailed++
		}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO scenes (
            run_id, scene_id, scene_path,
            videos_created, videos_failed,
            pointcloud_status, pointcloud_detail,
            descriptor_status, descriptor_detail,
            recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.runID,
		result.Scene.ID,
		result.Scene.Path,
		videosCreated,
		videosFailed,
		outcomeStatus(result.PointCloud),
		outcomeDetail(result.PointCloud),
		outcomeStatus(result.Descriptor),
		outcomeDetail(result.Descriptor),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record scene %s: %w", result.Scene.ID, err)
	}
	return nil
}

// FinishRun closes out the active run with its aggregate counts.
func (s *Store) FinishRun(ctx context.Context, videos, descriptors int) error {
	if s.runID == "" {
		return fmt.Errorf("no active run")
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, videos = ?, descriptors = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), videos, descriptors, s.runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// SceneCount returns the number of scene rows recorded for the active run.
func (s *Store) SceneCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM scenes WHERE run_id = ?`, s.runID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count scenes: %w", err)
	}
	return count, nil
}

func outcomeStatus(o scene.Outcome) string {
	if o.Status == "" {
		return string(scene.StatusSkipped)
	}
	return string(o.Status)
}

func outcomeDetail(o scene.Outcome) string {
	if o.OK() {
		return o.Path
	}
	return o.Reason
}
