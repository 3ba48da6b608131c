// Package local implements a deterministic in-process text embedder.
// Tokens are feature-hashed into a fixed-dimension vector so the embedding
// dimension is stable regardless of vocabulary, and identical text always
// produces an identical vector.
package local

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/marketlens/marketlens/internal/domain"
)

// Compile-time checks.
var (
	_ domain.Embedder      = (*Embedder)(nil)
	_ domain.BatchEmbedder = (*Embedder)(nil)
)

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

// Embedder hashes token frequencies into a fixed-dimension, L2-normalized
// vector. Embedding is CPU-bound and never touches the network.
type Embedder struct {
	dimension int
	stopwords map[string]struct{}
}

// New creates a local embedder producing vectors of the given dimension.
func New(dimension int) *Embedder {
	return &Embedder{
		dimension: dimension,
		stopwords: defaultStopwords(),
	}
}

// Dimension returns the dimensionality of produced vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed computes the embedding for the given text. A text with no usable
// tokens yields the zero vector.
func (e *Embedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	vec := make([]float64, e.dimension)

	for _, tok := range e.tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		vec[int(h.Sum32())%e.dimension]++
	}

	// Sublinear term-frequency scaling keeps very frequent tokens from
	// dominating the vector.
	for i, v := range vec {
		if v > 0 {
			vec[i] = 1 + math.Log(v)
		}
	}

	if norm := floats.Norm(vec, 2); norm > 0 {
		floats.Scale(1/norm, vec)
	}

	return domain.EmbeddingResult{Vector: vec}, nil
}

// BatchEmbed embeds each text independently; the local provider has no
// batching advantage.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	return domain.BatchFallback(ctx, e, texts)
}

func (e *Embedder) tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to",
		"of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were",
		"be", "been", "being", "it", "this", "that", "these", "those", "from",
		"up", "down", "over", "under", "than", "so", "such", "into", "about",
		"between", "through", "during", "before", "after", "above", "below",
		"out", "off", "own", "same", "too", "very", "can", "will", "just", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
