// Package index implements the in-memory embedding index: brute-force cosine
// similarity over fixed-dimension vectors.
package index

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/marketlens/marketlens/internal/domain"
)

// entry pairs a document with its vector. Entries keep ingestion order so
// similarity ties resolve deterministically.
type entry struct {
	doc  domain.Document
	vec  []float64
	norm float64
}

// Index is a brute-force cosine KNN index. It is built once during ingestion
// and treated as read-only while serving; Add takes an exclusive lock, so a
// rebuild must not run concurrently with searches it should not observe.
type Index struct {
	embedder  domain.Embedder
	dimension int

	mu      sync.RWMutex
	entries []entry
	byID    map[string]int
}

// New creates an empty index. All vectors, including query vectors, must have
// the given dimension.
func New(embedder domain.Embedder, dimension int) *Index {
	return &Index{
		embedder:  embedder,
		dimension: dimension,
		byID:      make(map[string]int),
	}
}

// Add embeds and stores the given documents. Re-adding a known document ID
// replaces its vector and content in place (idempotent), keeping the original
// ingestion position. A document that already carries a vector is stored
// as-is after dimension validation.
func (ix *Index) Add(ctx context.Context, docs []domain.Document) error {
	// Embed outside the lock: embedding is CPU-bound and must not block
	// concurrent searches longer than the swap itself.
	prepared := make([]entry, len(docs))
	toEmbed := make([]string, 0, len(docs))
	embedPos := make([]int, 0, len(docs))

	for i, d := range docs {
		if d.Vector != nil {
			if len(d.Vector) != ix.dimension {
				return fmt.Errorf("document %s: %w", d.ID, domain.NewDimensionMismatch(ix.dimension, len(d.Vector)))
			}
			prepared[i] = newEntry(d, d.Vector)
			continue
		}
		toEmbed = append(toEmbed, d.Content)
		embedPos = append(embedPos, i)
	}

	if len(toEmbed) > 0 {
		res, err := ix.batchEmbed(ctx, toEmbed)
		if err != nil {
			return fmt.Errorf("embed documents: %w", err)
		}
		for j, vec := range res.Vectors {
			i := embedPos[j]
			if len(vec) != ix.dimension {
				return fmt.Errorf("document %s: %w", docs[i].ID, domain.NewDimensionMismatch(ix.dimension, len(vec)))
			}
			d := docs[i]
			d.Vector = vec
			prepared[i] = newEntry(d, vec)
		}
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	for _, e := range prepared {
		if i, ok := ix.byID[e.doc.ID]; ok {
			ix.entries[i] = e
			continue
		}
		ix.byID[e.doc.ID] = len(ix.entries)
		ix.entries = append(ix.entries, e)
	}
	return nil
}

// newEntry precomputes the vector norm used by cosine similarity.
func newEntry(d domain.Document, vec []float64) entry {
	return entry{doc: d, vec: vec, norm: floats.Norm(vec, 2)}
}

func (ix *Index) batchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if be, ok := ix.embedder.(domain.BatchEmbedder); ok {
		return be.BatchEmbed(ctx, texts)
	}
	return domain.BatchFallback(ctx, ix.embedder, texts)
}

// Search embeds the query with the same model used at index time and returns
// up to k nearest documents by cosine similarity, most similar first. Ties
// are broken by ingestion order. Repeated identical calls return identical
// sequences.
func (ix *Index) Search(ctx context.Context, queryText string, k int) ([]domain.Match, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be >= 1, got %d", domain.ErrValidation, k)
	}

	res, err := ix.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(res.Vector) != ix.dimension {
		return nil, fmt.Errorf("query: %w", domain.NewDimensionMismatch(ix.dimension, len(res.Vector)))
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.entries) == 0 {
		return nil, domain.ErrEmptyIndex
	}

	queryNorm := floats.Norm(res.Vector, 2)

	similarities := make([]float64, len(ix.entries))
	for i, e := range ix.entries {
		similarities[i] = cosine(res.Vector, queryNorm, e.vec, e.norm)
	}

	order := make([]int, len(ix.entries))
	for i := range order {
		order[i] = i
	}
	// Stable sort keeps ingestion order on equal similarity.
	sort.SliceStable(order, func(a, b int) bool {
		return similarities[order[a]] > similarities[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}

	matches := make([]domain.Match, k)
	for rank := 0; rank < k; rank++ {
		i := order[rank]
		matches[rank] = domain.Match{
			Document:   ix.entries[i].doc,
			Similarity: similarities[i],
			Rank:       rank,
		}
	}
	return matches, nil
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// cosine computes cosine similarity clamped into [0, 1]. Negative values
// carry no useful ranking signal for this corpus and would leak confusing
// relevance percentages to clients.
func cosine(a []float64, normA float64, b []float64, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := floats.Dot(a, b) / (normA * normB)
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
