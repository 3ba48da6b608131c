// Package marketlens embeds the NIFTY 50 retrieval and analysis pipeline as
// a library, without the HTTP server. Documents are held in process.
package marketlens

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/index"
	"github.com/marketlens/marketlens/internal/store"
	analysisuc "github.com/marketlens/marketlens/internal/usecase/analysis"
	answeruc "github.com/marketlens/marketlens/internal/usecase/answer"
	extractuc "github.com/marketlens/marketlens/internal/usecase/extract"
	queryuc "github.com/marketlens/marketlens/internal/usecase/query"
)

// Client is the marketlens SDK entry point.
type Client struct {
	docs   *store.Memory
	idx    *index.Index
	engine *queryuc.Engine
}

// New creates a Client with an in-memory document store and the configured
// embedder (hashed token-frequency by default).
func New(opts ...Option) (*Client, error) {
	cfg := defaultClientConfig()
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.dimensions <= 0 {
		return nil, errors.New("marketlens: dimensions must be positive")
	}

	var embedder domain.Embedder
	if cfg.embedder != nil {
		embedder = &embedderAdapter{inner: cfg.embedder}
	} else {
		embedder = defaultEmbedder(cfg.dimensions)
	}

	idx := index.New(embedder, cfg.dimensions)
	engine := queryuc.New(
		idx,
		extractuc.New(),
		analysisuc.New(cfg.analysis),
		answeruc.New(cfg.answer),
		cfg.query,
		zap.NewNop(),
	)

	return &Client{
		docs:   store.NewMemory(),
		idx:    idx,
		engine: engine,
	}, nil
}

// AddDocuments stores and indexes documents. Re-adding a known ID replaces
// the stored document in place.
func (c *Client) AddDocuments(ctx context.Context, docs []Document) error {
	converted := make([]domain.Document, len(docs))
	for i, d := range docs {
		if d.ID == "" {
			return fmt.Errorf("marketlens: document %d has no id", i)
		}
		converted[i] = domain.Document{
			ID:      d.ID,
			Content: d.Content,
			Source:  d.Source,
			Date:    d.Date,
		}
	}

	if err := c.docs.Add(ctx, converted); err != nil {
		return fmt.Errorf("marketlens: store documents: %w", err)
	}
	if err := c.idx.Add(ctx, converted); err != nil {
		return fmt.Errorf("marketlens: index documents: %w", err)
	}
	return nil
}

// LoadCorpus ingests a preprocessed corpus file.
func (c *Client) LoadCorpus(ctx context.Context, path string) (int, error) {
	docs, err := store.LoadCorpus(path)
	if err != nil {
		return 0, fmt.Errorf("marketlens: %w", err)
	}
	if err := c.docs.Add(ctx, docs); err != nil {
		return 0, fmt.Errorf("marketlens: store corpus: %w", err)
	}
	if err := c.idx.Add(ctx, docs); err != nil {
		return 0, fmt.Errorf("marketlens: index corpus: %w", err)
	}
	return len(docs), nil
}

// Ask answers a question over the indexed documents. topK <= 0 selects the
// configured default.
func (c *Client) Ask(ctx context.Context, question string, topK int) (Answer, error) {
	ans, err := c.engine.Ask(ctx, question, topK)
	if err != nil {
		return Answer{}, err
	}
	return answerFromDomain(ans), nil
}

// DocumentCount reports how many documents are indexed.
func (c *Client) DocumentCount() int {
	return c.idx.Len()
}

// embedderAdapter wraps the public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	vec, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{Vector: vec}, nil
}
