// Package encodings persists per-student face embedding sets. Enrollment
// appends, the capture loop loads the whole gallery; there is no partial
// access and vectors are never replaced.
package encodings

import (
	"context"
	"errors"

	"github.com/akraiem/attendance-tracker/internal/recognition"
)

// ErrNotFound is returned when a student has no stored embeddings.
var ErrNotFound = errors.New("no encodings for student")

// Store is the encoding store. Identifiers are the normalized
// name_regno folder names.
type Store interface {
	// Append adds vectors to a student's set, creating it if absent.
	Append(ctx context.Context, identifier string, vectors [][]float32) error
	// Load returns all vectors for one student in insertion order.
	Load(ctx context.Context, identifier string) ([][]float32, error)
	// LoadAll returns the full gallery, one Known per stored vector, in
	// stable storage order (identifier, then insertion order).
	LoadAll(ctx context.Context) ([]recognition.Known, error)
	// Count returns the number of vectors stored for one student.
	Count(ctx context.Context, identifier string) (int, error)
}
