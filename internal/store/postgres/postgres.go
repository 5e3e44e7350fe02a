// Package postgres is the optional shared-deployment backend. It stores
// the registry, the attendance log and the face embeddings (pgvector) in
// one database.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/akraiem/attendance-tracker/internal/config"
	"github.com/akraiem/attendance-tracker/internal/store"
)

// DB wraps a PostgreSQL connection pool and implements store.Store.
type DB struct {
	db *sql.DB
}

// Open connects, configures the pool and applies migrations.
func Open(cfg *config.DatabaseConfig) (*DB, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errors.New("database URL is required")
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &DB{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

func (s *DB) Students() store.Students     { return &studentRepo{db: s.db} }
func (s *DB) Attendance() store.Attendance { return &attendanceRepo{db: s.db} }

// Encodings returns the pgvector-backed encoding store.
func (s *DB) Encodings() *EncodingRepository { return &EncodingRepository{db: s.db} }

func (s *DB) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}
