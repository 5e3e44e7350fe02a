package encodings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/akraiem/attendance-tracker/internal/recognition"
)

// studentFile is the on-disk layout of one student's encoding set.
type studentFile struct {
	Identifier string      `json:"identifier"`
	Vectors    [][]float32 `json:"vectors"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// FileStore keeps one JSON file per student under a directory.
type FileStore struct {
	dir string
}

// NewFileStore ensures the encodings directory exists.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating encodings directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(identifier string) string {
	return filepath.Join(s.dir, identifier+".json")
}

func (s *FileStore) read(identifier string) (*studentFile, error) {
	data, err := os.ReadFile(s.path(identifier))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading encodings: %w", err)
	}

	var f studentFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("unmarshaling encodings for %s: %w", identifier, err)
	}
	return &f, nil
}

// Append concatenates vectors onto the student's file, creating it if
// absent. Existing vectors are never discarded.
func (s *FileStore) Append(ctx context.Context, identifier string, vectors [][]float32) error {
	if len(vectors) == 0 {
		return nil
	}

	f, err := s.read(identifier)
	if err != nil {
		if err != ErrNotFound {
			return err
		}
		f = &studentFile{Identifier: identifier}
	}

	f.Vectors = append(f.Vectors, vectors...)
	f.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling encodings: %w", err)
	}
	if err := os.WriteFile(s.path(identifier), data, 0o644); err != nil {
		return fmt.Errorf("writing encodings: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"student": identifier,
		"added":   len(vectors),
		"total":   len(f.Vectors),
	}).Debug("encodings saved")
	return nil
}

func (s *FileStore) Load(ctx context.Context, identifier string) ([][]float32, error) {
	f, err := s.read(identifier)
	if err != nil {
		return nil, err
	}
	return f.Vectors, nil
}

func (s *FileStore) Count(ctx context.Context, identifier string) (int, error) {
	f, err := s.read(identifier)
	if err == ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return len(f.Vectors), nil
}

// LoadAll returns the gallery in stable order: files sorted by name,
// vectors in insertion order within each file.
func (s *FileStore) LoadAll(ctx context.Context) ([]recognition.Known, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing encodings directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var gallery []recognition.Known
	for _, name := range names {
		identifier := strings.TrimSuffix(name, ".json")
		f, err := s.read(identifier)
		if err != nil {
			return nil, err
		}
		for _, v := range f.Vectors {
			gallery = append(gallery, recognition.Known{Identifier: identifier, Vector: v})
		}
	}
	return gallery, nil
}
