package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/akraiem/attendance-tracker/internal/camera"
	"github.com/akraiem/attendance-tracker/internal/config"
	"github.com/akraiem/attendance-tracker/internal/encodings"
	"github.com/akraiem/attendance-tracker/internal/store"
	"github.com/akraiem/attendance-tracker/internal/store/postgres"
	"github.com/akraiem/attendance-tracker/internal/store/sqlite"
)

// openBackend selects the storage backend. DATABASE_URL selects
// PostgreSQL, where embeddings live in a pgvector column next to the
// relational tables. Without it the file-backed default is used: SQLite
// for the tables and one JSON file per student for embeddings.
func openBackend(cfg *config.Config) (store.Store, encodings.Store, error) {
	if cfg.Database.URL != "" {
		db, err := postgres.Open(&cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("opening postgres: %w", err)
		}
		logrus.Info("using PostgreSQL backend")
		return db, db.Encodings(), nil
	}

	db, err := sqlite.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening sqlite: %w", err)
	}
	enc, err := encodings.NewFileStore(cfg.Storage.EncodingsDir)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("opening encodings store: %w", err)
	}
	logrus.WithField("db", cfg.Storage.DBPath).Info("using SQLite backend")
	return db, enc, nil
}

// openCamera picks the frame source: a directory of JPEG frames when
// framesDir is set, the configured camera URL otherwise.
func openCamera(ctx context.Context, cfg *config.Config, framesDir string) (camera.Source, error) {
	if framesDir != "" {
		return camera.NewDirSource(framesDir)
	}
	if cfg.Camera.URL == "" {
		return nil, fmt.Errorf("no camera configured, set CAMERA_URL or pass --frames-dir")
	}
	return camera.NewHTTPSource(ctx, cfg.Camera.URL)
}
