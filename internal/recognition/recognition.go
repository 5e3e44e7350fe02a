// Package recognition matches face embeddings against enrolled students.
// Detection and embedding extraction are delegated to dlib via go-face;
// everything else in the repo talks to the Detector interface.
package recognition

import (
	"errors"
	"image"
	"math"
)

// Dim is the embedding dimension produced by the dlib resnet model.
const Dim = 128

// DetectedFace is a single face found in a frame. Embedding is empty when
// the extraction step failed for an otherwise detected face.
type DetectedFace struct {
	Box       image.Rectangle
	Embedding []float32
}

// Detector finds faces in a JPEG frame and extracts their embeddings.
type Detector interface {
	Detect(jpegData []byte) ([]DetectedFace, error)
	Close() error
}

var (
	ErrNoFaceDetected = errors.New("no face detected")
	ErrModelsNotFound = errors.New("recognition models not found")
)

// EuclideanDistance computes the distance between two embeddings.
// Mismatched or empty vectors are treated as maximally distant.
func EuclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.MaxFloat64
	}
	var sum float64
	for i := range a {
		diff := float64(a[i]) - float64(b[i])
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// Known is one enrolled embedding together with its student identifier
// (the name_regno folder name). Gallery order is storage order.
type Known struct {
	Identifier string
	Vector     []float32
}

// Match is the result of classifying a probe embedding.
type Match struct {
	Identifier string
	Distance   float64
}

// Matcher classifies probe embeddings against the gallery of known
// embeddings. The default path is an exact linear scan; an approximate
// HNSW index can be enabled for large galleries.
type Matcher struct {
	gallery   []Known
	tolerance float64
	index     *hnswIndex
}

// NewMatcher creates a matcher over the gallery. A probe matches when its
// distance to the nearest known embedding is strictly below tolerance.
func NewMatcher(gallery []Known, tolerance float64) *Matcher {
	return &Matcher{gallery: gallery, tolerance: tolerance}
}

// Size returns the number of known embeddings.
func (m *Matcher) Size() int {
	return len(m.gallery)
}

// Nearest returns the closest known embedding regardless of tolerance.
// The second return is false when the gallery is empty.
// Among equidistant candidates the first in storage order wins.
func (m *Matcher) Nearest(probe []float32) (Match, bool) {
	if len(m.gallery) == 0 {
		return Match{}, false
	}

	if m.index != nil {
		if best, ok := m.index.nearest(probe); ok {
			return best, true
		}
	}

	best := Match{Distance: math.MaxFloat64}
	for _, k := range m.gallery {
		if d := EuclideanDistance(probe, k.Vector); d < best.Distance {
			best = Match{Identifier: k.Identifier, Distance: d}
		}
	}
	return best, true
}

// Classify resolves a probe to a student identifier. The second return is
// false when the nearest distance is at or above tolerance ("Unknown").
func (m *Matcher) Classify(probe []float32) (Match, bool) {
	best, ok := m.Nearest(probe)
	if !ok || best.Distance >= m.tolerance {
		return Match{}, false
	}
	return best, true
}
