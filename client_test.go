package marketlens

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNew_InvalidDimensions(t *testing.T) {
	_, err := New(WithDimensions(0))
	if err == nil {
		t.Fatal("expected error for zero dimensions")
	}
}

func TestAsk_EmptyIndex(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.Ask(context.Background(), "nifty outlook", 3)
	if !errors.Is(err, ErrEmptyIndex) {
		t.Errorf("expected ErrEmptyIndex, got %v", err)
	}
}

func TestAsk_Validation(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.Ask(context.Background(), "", 3)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestAddDocumentsAndAsk(t *testing.T) {
	c, err := New(WithMinSimilarity(0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	docs := []Document{
		{
			ID:      "d1",
			Content: "NIFTY closed at 22,150.50 today after a strong banking rally across the index.",
			Source:  "moneycontrol",
			Date:    "2024-03-01",
		},
		{
			ID:      "d2",
			Content: "Midcap stocks lagged as investors booked profits near record highs this week.",
			Source:  "economictimes",
			Date:    "2024-03-02",
		},
	}
	if err := c.AddDocuments(ctx, docs); err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	if c.DocumentCount() != 2 {
		t.Fatalf("expected 2 documents, got %d", c.DocumentCount())
	}

	ans, err := c.Ask(ctx, "banking rally", 2)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if len(ans.Results) == 0 {
		t.Fatal("expected results")
	}
	if ans.Results[0].Source != "moneycontrol" {
		t.Errorf("expected the banking document first, got %q", ans.Results[0].Source)
	}
	if !strings.Contains(ans.Text, "banking rally") {
		t.Errorf("answer should restate the question, got %q", ans.Text)
	}
	if ans.Analysis.MeanPrice == nil {
		t.Error("expected price statistics from the indexed document")
	}
}

func TestAddDocuments_MissingID(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = c.AddDocuments(context.Background(), []Document{{Content: "no id"}})
	if err == nil {
		t.Fatal("expected error for missing document id")
	}
}

func TestEmbedderAdapter(t *testing.T) {
	called := false
	custom := embedderFunc(func(_ context.Context, text string) ([]float64, error) {
		called = true
		v := make([]float64, 8)
		for i, r := range text {
			v[i%8] += float64(r)
		}
		return v, nil
	})

	c, err := New(WithDimensions(8), WithEmbedder(custom), WithMinSimilarity(0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	err = c.AddDocuments(ctx, []Document{
		{ID: "d1", Content: "NIFTY gained 150 points in a broad rally today.", Source: "s", Date: "2024-01-01"},
	})
	if err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	if !called {
		t.Error("custom embedder was not used")
	}
}

func TestEmbedderAdapter_Error(t *testing.T) {
	embErr := errors.New("provider down")
	failing := embedderFunc(func(_ context.Context, _ string) ([]float64, error) {
		return nil, embErr
	})

	c, err := New(WithDimensions(8), WithEmbedder(failing))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = c.AddDocuments(context.Background(), []Document{{ID: "d1", Content: "text"}})
	if !errors.Is(err, embErr) {
		t.Errorf("expected wrapped embedder error, got %v", err)
	}
}

// embedderFunc adapts a function to the Embedder interface.
type embedderFunc func(ctx context.Context, text string) ([]float64, error)

func (f embedderFunc) Embed(ctx context.Context, text string) ([]float64, error) {
	return f(ctx, text)
}
