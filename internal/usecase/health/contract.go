package health

import "context"

// StorePinger checks document storage availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// IndexReader reports how many documents are indexed.
type IndexReader interface {
	Len() int
}
