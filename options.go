package marketlens

import (
	localemb "github.com/marketlens/marketlens/internal/embedder/local"
	analysisuc "github.com/marketlens/marketlens/internal/usecase/analysis"
	answeruc "github.com/marketlens/marketlens/internal/usecase/answer"
	queryuc "github.com/marketlens/marketlens/internal/usecase/query"
)

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	dimensions int
	embedder   Embedder
	query      queryuc.Config
	analysis   analysisuc.Config
	answer     answeruc.Config
}

func defaultClientConfig() clientConfig {
	return clientConfig{
		dimensions: 384,
		query: queryuc.Config{
			DefaultTopK:   3,
			MinQueryLen:   3,
			MaxQueryLen:   500,
			MinSimilarity: 0.10,
		},
		analysis: analysisuc.Config{
			VolatilityLow:  20,
			VolatilityHigh: 50,
			SMAWindow:      3,
			HoldOnHighRisk: true,
		},
		answer: answeruc.Config{
			MaxExcerptLen: 400,
			MaxFacts:      5,
		},
	}
}

// WithDimensions sets the embedding vector dimensionality.
func WithDimensions(d int) Option {
	return func(c *clientConfig) {
		c.dimensions = d
	}
}

// WithEmbedder replaces the default hashed token-frequency embedder.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

// WithTopK sets the default number of documents to retrieve per question.
func WithTopK(k int) Option {
	return func(c *clientConfig) {
		c.query.DefaultTopK = k
	}
}

// WithMinSimilarity sets the relevance floor; matches below it are dropped.
func WithMinSimilarity(s float64) Option {
	return func(c *clientConfig) {
		c.query.MinSimilarity = s
	}
}

// WithVolatilityCutoffs sets the low/medium and medium/high risk boundaries.
func WithVolatilityCutoffs(low, high float64) Option {
	return func(c *clientConfig) {
		c.analysis.VolatilityLow = low
		c.analysis.VolatilityHigh = high
	}
}

func defaultEmbedder(dimensions int) *localemb.Embedder {
	return localemb.New(dimensions)
}
