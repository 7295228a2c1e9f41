// Package embedcache holds the per-job embedding cache. Embedding
// generation dominates job cost, so all vectors are computed once up
// front and frozen before pairwise scoring begins; readers never race
// writers.
package embedcache

import (
	"context"

	"github.com/cespare/xxhash/v2"
	"github.com/repoguard/repoguard/internal/fileproc"
	"github.com/repoguard/repoguard/pkg/similarity"
)

// Cache maps normalized texts to their representative vectors, keyed by
// xxhash of the text. Populate must complete before Vector is called.
type Cache struct {
	embedder *similarity.Embedder
	vectors  map[uint64][]float64
	frozen   bool
}

// New creates an empty cache backed by the given embedder.
func New(embedder *similarity.Embedder) *Cache {
	return &Cache{
		embedder: embedder,
		vectors:  make(map[uint64][]float64),
	}
}

type keyedVector struct {
	key uint64
	vec []float64
}

// Populate embeds every distinct text once, in parallel, then freezes
// the cache. Returns the first error encountered; a failed embedding
// call is a collaborator failure that fails the job's embedding stage.
func (c *Cache) Populate(ctx context.Context, texts []string, onProgress fileproc.ProgressFunc) error {
	distinct := make(map[uint64]string, len(texts))
	for _, t := range texts {
		distinct[xxhash.Sum64String(t)] = t
	}

	type item struct {
		key  uint64
		text string
	}
	items := make([]item, 0, len(distinct))
	for k, t := range distinct {
		items = append(items, item{key: k, text: t})
	}

	results, errs := fileproc.MapWithContext(ctx, items,
		func(it item) string { return it.text },
		func(ctx context.Context, it item) (keyedVector, error) {
			vec, err := c.embedder.Vector(ctx, it.text)
			if err != nil {
				return keyedVector{}, err
			}
			return keyedVector{key: it.key, vec: vec}, nil
		}, onProgress)
	if errs != nil {
		return errs
	}

	for _, r := range results {
		c.vectors[r.key] = r.vec
	}
	c.frozen = true
	return nil
}

// Vector returns the cached vector for a normalized text. The second
// return is false when the cache was never populated with the text.
func (c *Cache) Vector(text string) ([]float64, bool) {
	if !c.frozen {
		return nil, false
	}
	vec, ok := c.vectors[xxhash.Sum64String(text)]
	return vec, ok
}

// Len returns the number of cached vectors.
func (c *Cache) Len() int {
	return len(c.vectors)
}
