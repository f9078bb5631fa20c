package vector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrEmbedding       = errors.New("embedding failed")
	ErrInvalidArgument = errors.New("invalid argument")
)

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type entry struct {
	passage string
	vec     []float32
	norm    float64
}

// Index is an immutable in-memory nearest-neighbor store over passage
// embeddings. Build it once, query it from any number of goroutines.
type Index struct {
	entries   []entry
	dimension int
}

// Build embeds every passage in order and assembles an index. Any
// embedder failure discards the partial result; no half-built index is
// ever returned.
func Build(ctx context.Context, passages []string, embedder Embedder) (*Index, error) {
	ix := &Index{entries: make([]entry, 0, len(passages))}
	for i, p := range passages {
		vec, err := embedder.Embed(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("%w: passage %d: %v", ErrEmbedding, i, err)
		}
		if ix.dimension == 0 {
			ix.dimension = len(vec)
		} else if len(vec) != ix.dimension {
			return nil, fmt.Errorf("%w: passage %d: dimension %d, want %d", ErrEmbedding, i, len(vec), ix.dimension)
		}
		ix.entries = append(ix.entries, entry{passage: p, vec: vec, norm: norm(vec)})
	}
	return ix, nil
}

// Query embeds text and returns the k passages nearest by cosine
// similarity, nearest first. Ties keep insertion order. Fewer than k
// entries yields all of them; an empty index yields an empty result.
func (ix *Index) Query(ctx context.Context, text string, embedder Embedder, k int) ([]string, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrInvalidArgument, k)
	}
	if len(ix.entries) == 0 {
		return nil, nil
	}

	qvec, err := embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrEmbedding, err)
	}
	qnorm := norm(qvec)

	type scored struct {
		pos int
		sim float64
	}
	hits := make([]scored, len(ix.entries))
	for i, e := range ix.entries {
		hits[i] = scored{pos: i, sim: cosine(qvec, qnorm, e.vec, e.norm)}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].sim > hits[b].sim
	})

	if k > len(hits) {
		k = len(hits)
	}
	passages := make([]string, k)
	for i := 0; i < k; i++ {
		passages[i] = ix.entries[hits[i].pos].passage
	}
	return passages, nil
}

func (ix *Index) Len() int {
	return len(ix.entries)
}

func (ix *Index) Dimension() int {
	return ix.dimension
}

func norm(vec []float32) float64 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

func cosine(a []float32, anorm float64, b []float32, bnorm float64) float64 {
	if anorm == 0 || bnorm == 0 || len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (anorm * bnorm)
}
