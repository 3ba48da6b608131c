package domain

import "math"

// Document is a cleaned market document supplied by the ingestion pipeline.
// Immutable once indexed.
type Document struct {
	ID      string
	Content string
	Source  string
	Date    string // calendar date as provided by the source, or "unknown"
	Vector  []float64
}

// Match is a single retrieval hit. Rank is the position in the result
// sequence, most similar first.
type Match struct {
	Document   Document
	Similarity float64 // cosine similarity in [0, 1]
	Rank       int
}

// Relevance exposes similarity as a percentage rounded to one decimal,
// the shape clients see in API responses.
func (m Match) Relevance() float64 {
	pct := math.Round(m.Similarity*1000) / 10
	if pct < 0 {
		return 0
	}
	return pct
}
