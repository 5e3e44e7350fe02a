package camera

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DirSource replays JPEG files from a directory in lexical order. Used for
// offline runs against recorded frames and in tests.
type DirSource struct {
	files []string
	next  int
}

// NewDirSource lists the JPEG files under dir.
func NewDirSource(dir string) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading frame directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		if strings.HasSuffix(name, ".jpg") || strings.HasSuffix(name, ".jpeg") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	return &DirSource{files: files}, nil
}

func (s *DirSource) NextFrame(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if s.next >= len(s.files) {
		return Frame{}, ErrNoMoreFrames
	}

	data, err := os.ReadFile(s.files[s.next])
	if err != nil {
		return Frame{}, fmt.Errorf("reading frame file: %w", err)
	}
	s.next++
	return Frame{JPEG: data, Timestamp: time.Now()}, nil
}

func (s *DirSource) Close() error { return nil }
