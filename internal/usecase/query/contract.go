package query

import (
	"context"

	"github.com/marketlens/marketlens/internal/domain"
)

// Retriever runs semantic KNN search over the indexed corpus.
type Retriever interface {
	Search(ctx context.Context, queryText string, k int) ([]domain.Match, error)
	Len() int
}

// Extractor pulls price values out of document text.
type Extractor interface {
	Extract(text string) []float64
}

// Analyzer computes market statistics over a price series.
type Analyzer interface {
	Analyze(prices []float64) domain.Analysis
}

// Synthesizer renders the final answer text.
type Synthesizer interface {
	Synthesize(question string, matches []domain.Match, analysis domain.Analysis) string
}
