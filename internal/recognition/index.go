package recognition

import (
	"github.com/coder/hnsw"
	"github.com/sirupsen/logrus"
)

const hnswMaxNeighbors = 16

// hnswIndex wraps the HNSW graph for approximate nearest-embedding search.
// Distances reported to callers are always recomputed exactly so the
// tolerance check stays identical to the linear path.
type hnswIndex struct {
	graph *hnsw.Graph[int]
	known []Known
}

// EnableHNSW builds an in-memory index over the gallery. Intended for large
// galleries; the result is approximate and may miss the true nearest
// neighbor, so it is opt-in.
func (m *Matcher) EnableHNSW() {
	if len(m.gallery) == 0 {
		return
	}

	g := hnsw.NewGraph[int]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors)
	g.Distance = hnsw.EuclideanDistance

	for i, k := range m.gallery {
		if len(k.Vector) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(i, k.Vector))
	}

	m.index = &hnswIndex{graph: g, known: m.gallery}
	logrus.WithField("embeddings", len(m.gallery)).Debug("HNSW index built")
}

func (idx *hnswIndex) nearest(probe []float32) (Match, bool) {
	neighbors := idx.graph.Search(probe, 1)
	if len(neighbors) == 0 {
		return Match{}, false
	}

	i := neighbors[0].Key
	if i < 0 || i >= len(idx.known) {
		return Match{}, false
	}
	k := idx.known[i]
	return Match{Identifier: k.Identifier, Distance: EuclideanDistance(probe, k.Vector)}, true
}
