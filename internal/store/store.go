// Package store holds the document stores feeding the retrieval pipeline.
// Documents arrive already cleaned from the ingestion side; the store owns
// no business logic.
package store

import (
	"context"
	"errors"

	"github.com/marketlens/marketlens/internal/domain"
)

// ErrKeyNotFound signals a missing key in the KV store.
var ErrKeyNotFound = errors.New("store: key not found")

// DocumentStore is the persistence contract for cleaned market documents.
type DocumentStore interface {
	Add(ctx context.Context, docs []domain.Document) error
	All(ctx context.Context) ([]domain.Document, error)
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
	Close()
}

// KV is the narrow key-value contract used by the embedding cache.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
