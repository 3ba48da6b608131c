package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyIndex signals a search against an index with no documents.
	ErrEmptyIndex = errors.New("index is empty")
	// ErrDimensionMismatch signals an embedding dimension inconsistency.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrValidation signals bad caller input (empty or too-long question, invalid k).
	ErrValidation = errors.New("validation failed")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

// DimensionMismatchError wraps ErrDimensionMismatch with the expected and
// actual vector dimensions. Vectors are never silently truncated or padded.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: want %d, got %d", ErrDimensionMismatch.Error(), e.Want, e.Got)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }

// NewDimensionMismatch creates a dimension mismatch error.
func NewDimensionMismatch(want, got int) error {
	return &DimensionMismatchError{Want: want, Got: got}
}
