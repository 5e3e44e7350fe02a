package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/akraiem/attendance-tracker/internal/encodings"
	"github.com/akraiem/attendance-tracker/internal/recognition"
)

// EncodingRepository implements encodings.Store on a pgvector column.
// Rows are append-only, matching the file store's semantics.
type EncodingRepository struct {
	db *sql.DB
}

var _ encodings.Store = (*EncodingRepository)(nil)

func (r *EncodingRepository) Append(ctx context.Context, identifier string, vectors [][]float32) error {
	if len(vectors) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, v := range vectors {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO encodings (identifier, embedding) VALUES ($1, $2)",
			identifier, pgvector.NewVector(v))
		if err != nil {
			return fmt.Errorf("save encoding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing encodings: %w", err)
	}
	return nil
}

func (r *EncodingRepository) Load(ctx context.Context, identifier string) ([][]float32, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT embedding FROM encodings WHERE identifier = $1 ORDER BY id", identifier)
	if err != nil {
		return nil, fmt.Errorf("query encodings: %w", err)
	}
	defer rows.Close()

	var vectors [][]float32
	for rows.Next() {
		var vec pgvector.Vector
		if err := rows.Scan(&vec); err != nil {
			return nil, fmt.Errorf("scan encoding: %w", err)
		}
		vectors = append(vectors, vec.Slice())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate encodings: %w", err)
	}
	if len(vectors) == 0 {
		return nil, encodings.ErrNotFound
	}
	return vectors, nil
}

func (r *EncodingRepository) Count(ctx context.Context, identifier string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM encodings WHERE identifier = $1", identifier).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count encodings: %w", err)
	}
	return count, nil
}

// LoadAll returns the gallery ordered by identifier then insertion order,
// the same stable order the file store produces.
func (r *EncodingRepository) LoadAll(ctx context.Context) ([]recognition.Known, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT identifier, embedding FROM encodings ORDER BY identifier, id")
	if err != nil {
		return nil, fmt.Errorf("query all encodings: %w", err)
	}
	defer rows.Close()

	var gallery []recognition.Known
	for rows.Next() {
		var identifier string
		var vec pgvector.Vector
		if err := rows.Scan(&identifier, &vec); err != nil {
			return nil, fmt.Errorf("scan encoding: %w", err)
		}
		gallery = append(gallery, recognition.Known{Identifier: identifier, Vector: vec.Slice()})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate encodings: %w", err)
	}
	return gallery, nil
}
