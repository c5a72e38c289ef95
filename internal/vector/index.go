package vector

import (
	"fmt"
	"math"
	"sort"
)

// Flat is an exhaustive inner-product index. All stored vectors are expected
// to be L2-normalized, so inner product equals cosine similarity. Rows are
// append-only; row i of the index corresponds to chunk text i in the parallel
// text store.
type Flat struct {
	Dim     int
	Vectors [][]float32
}

// Match is one search hit: the index row and its similarity score.
type Match struct {
	Row   int
	Score float32
}

func NewFlat(dim int) *Flat {
	return &Flat{Dim: dim}
}

func (f *Flat) Len() int { return len(f.Vectors) }

// Add appends vectors in the given order. Rows are never reordered or
// removed, which is what keeps the chunk-text correspondence intact.
func (f *Flat) Add(vectors [][]float32) error {
	for i, v := range vectors {
		if f.Dim == 0 && len(v) > 0 {
			f.Dim = len(v)
		}
		if len(v) != f.Dim {
			return fmt.Errorf("vector %d has dimension %d, index expects %d", i, len(v), f.Dim)
		}
	}
	f.Vectors = append(f.Vectors, vectors...)
	return nil
}

// Search returns the k highest-scoring rows for the query vector, descending
// by score, ties broken by lowest row. The query is normalized on a copy;
// stored vectors are assumed normalized already. If the index holds fewer
// than k rows, all rows are returned.
func (f *Flat) Search(query []float32, k int) ([]Match, error) {
	if len(f.Vectors) == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != f.Dim {
		return nil, fmt.Errorf("query has dimension %d, index expects %d", len(query), f.Dim)
	}

	q := make([]float32, len(query))
	copy(q, query)
	Normalize(q)

	matches := make([]Match, len(f.Vectors))
	for i, v := range f.Vectors {
		matches[i] = Match{Row: i, Score: dot(q, v)}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		if matches[a].Score != matches[b].Score {
			return matches[a].Score > matches[b].Score
		}
		return matches[a].Row < matches[b].Row
	})

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k], nil
}

// Normalize scales v to unit length in place. The zero vector is left as is.
// Normalizing an already-unit vector is a no-op up to float rounding.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}

func dot(a, b []float32) float32 {
	var s float32
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
