package manifest

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS runs (
        id          TEXT PRIMARY KEY,
        root        TEXT NOT NULL,
        stage       TEXT NOT NULL,
        workers     INTEGER NOT NULL,
        started_at  TEXT NOT NULL,
        finished_at TEXT,
        videos      INTEGER,
        descriptors INTEGER
    )`,
	`CREATE TABLE IF NOT EXISTS scenes (
        run_id            TEXT NOT NULL REFERENCES runs(id),
        scene_id          TEXT NOT NULL,
        scene_path        TEXT NOT NULL,
        videos_created    INTEGER NOT NULL DEFAULT 0,
        videos_failed     INTEGER NOT NULL DEFAULT 0,
        pointcloud_status TEXT NOT NULL,
        pointcloud_detail TEXT,
        descriptor_status TEXT NOT NULL,
        descriptor_detail TEXT,
        recorded_at       TEXT NOT NULL,
        PRIMARY KEY (run_id, scene_id)
    )`,
	`CREATE INDEX IF NOT EXISTS idx_scenes_run ON scenes(run_id)`,
}

func (s *Store) applySchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
