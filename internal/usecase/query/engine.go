// Package query orchestrates the answer pipeline: validate the question,
// retrieve matching documents, extract prices, run the market analysis, and
// synthesize the final answer. Every stage is deterministic, so repeated
// calls over an unchanged index return identical answers.
package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/marketlens/marketlens/internal/domain"
	"github.com/marketlens/marketlens/internal/metrics"
)

// Config holds pipeline settings.
type Config struct {
	DefaultTopK   int
	MinQueryLen   int
	MaxQueryLen   int
	MinSimilarity float64
	Timeout       time.Duration // 0 = no timeout
}

// Engine runs the full question-to-answer pipeline.
type Engine struct {
	retriever Retriever
	extractor Extractor
	analyzer  Analyzer
	synth     Synthesizer
	cfg       Config
	log       *zap.Logger
}

// New creates a query engine.
func New(retriever Retriever, extractor Extractor, analyzer Analyzer, synth Synthesizer, cfg Config, log *zap.Logger) *Engine {
	return &Engine{
		retriever: retriever,
		extractor: extractor,
		analyzer:  analyzer,
		synth:     synth,
		cfg:       cfg,
		log:       log,
	}
}

// Ask answers a question over the indexed corpus. topK <= 0 selects the
// configured default. Validation failures wrap domain.ErrValidation; an
// empty index surfaces domain.ErrEmptyIndex from retrieval.
func (e *Engine) Ask(ctx context.Context, question string, topK int) (domain.Answer, error) {
	start := time.Now()

	answer, err := e.ask(ctx, question, topK)

	metrics.QueryDuration.Observe(time.Since(start).Seconds())
	metrics.QueriesTotal.WithLabelValues(outcome(answer, err)).Inc()

	return answer, err
}

func (e *Engine) ask(ctx context.Context, question string, topK int) (domain.Answer, error) {
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	question, err := e.validate(question)
	if err != nil {
		return domain.Answer{}, err
	}
	if topK <= 0 {
		topK = e.cfg.DefaultTopK
	}

	matches, err := e.retriever.Search(ctx, question, topK)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("retrieve: %w", err)
	}
	matches = e.filterRelevant(matches)

	e.log.Debug("retrieved documents",
		zap.Int("matches", len(matches)),
		zap.Int("top_k", topK),
	)

	var prices []float64
	for _, m := range matches {
		prices = append(prices, e.extractor.Extract(m.Document.Content)...)
	}

	analysis := e.analyzer.Analyze(prices)

	e.log.Debug("analysis complete",
		zap.Int("prices", len(prices)),
		zap.String("trend", string(analysis.Trend)),
		zap.String("signal", string(analysis.Signal)),
	)

	return domain.Answer{
		Question: question,
		Matches:  matches,
		Analysis: analysis,
		Text:     e.synth.Synthesize(question, matches, analysis),
	}, nil
}

// validate trims and length-checks the question.
func (e *Engine) validate(question string) (string, error) {
	question = strings.TrimSpace(question)
	switch {
	case question == "":
		return "", fmt.Errorf("%w: question is empty", domain.ErrValidation)
	case len(question) < e.cfg.MinQueryLen:
		return "", fmt.Errorf("%w: question shorter than %d characters", domain.ErrValidation, e.cfg.MinQueryLen)
	case len(question) > e.cfg.MaxQueryLen:
		return "", fmt.Errorf("%w: question longer than %d characters", domain.ErrValidation, e.cfg.MaxQueryLen)
	}
	return question, nil
}

// filterRelevant drops matches below the similarity floor and re-ranks the
// survivors so ranks stay dense.
func (e *Engine) filterRelevant(matches []domain.Match) []domain.Match {
	kept := matches[:0]
	for _, m := range matches {
		if m.Similarity >= e.cfg.MinSimilarity {
			m.Rank = len(kept)
			kept = append(kept, m)
		}
	}
	return kept
}

func outcome(answer domain.Answer, err error) string {
	switch {
	case err != nil:
		return "error"
	case len(answer.Matches) == 0:
		return "no_results"
	default:
		return "answered"
	}
}
