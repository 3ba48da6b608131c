package marketlens

import (
	"context"

	"github.com/marketlens/marketlens/internal/domain"
)

// Sentinel errors surfaced by Ask.
var (
	// ErrValidation marks a rejected question (empty, too short, too long).
	ErrValidation = domain.ErrValidation
	// ErrEmptyIndex is returned when no documents have been indexed yet.
	ErrEmptyIndex = domain.ErrEmptyIndex
)

// Embedder converts text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Document is a unit of corpus text with its provenance.
type Document struct {
	ID      string
	Content string
	Source  string
	Date    string
}

// Result is one retrieved document with its relevance score (0..100).
type Result struct {
	Content   string
	Source    string
	Date      string
	Relevance float64
}

// Analysis is the statistical view of prices found in retrieved documents.
// Numeric fields are nil when no prices were found.
type Analysis struct {
	MeanPrice  *float64
	MaxPrice   *float64
	MinPrice   *float64
	Volatility *float64
	SMA        *float64
	Trend      string
	RiskLevel  string
	Signal     string
	Status     string
}

// Answer is the full response to one question.
type Answer struct {
	Question string
	Text     string
	Results  []Result
	Analysis Analysis
}

func answerFromDomain(a domain.Answer) Answer {
	results := make([]Result, len(a.Matches))
	for i, m := range a.Matches {
		results[i] = Result{
			Content:   m.Document.Content,
			Source:    m.Document.Source,
			Date:      m.Document.Date,
			Relevance: m.Relevance(),
		}
	}

	return Answer{
		Question: a.Question,
		Text:     a.Text,
		Results:  results,
		Analysis: Analysis{
			MeanPrice:  a.Analysis.Mean,
			MaxPrice:   a.Analysis.Max,
			MinPrice:   a.Analysis.Min,
			Volatility: a.Analysis.Volatility,
			SMA:        a.Analysis.SMA,
			Trend:      string(a.Analysis.Trend),
			RiskLevel:  string(a.Analysis.Risk),
			Signal:     string(a.Analysis.Signal),
			Status:     a.Analysis.Status,
		},
	}
}
