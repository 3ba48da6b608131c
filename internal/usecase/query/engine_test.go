package query

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/marketlens/marketlens/internal/domain"
)

// --- Mocks ---

type mockRetriever struct {
	matches   []domain.Match
	err       error
	lastQuery string
	lastK     int
	calls     int
}

func (m *mockRetriever) Search(_ context.Context, queryText string, k int) ([]domain.Match, error) {
	m.calls++
	m.lastQuery = queryText
	m.lastK = k
	return m.matches, m.err
}

func (m *mockRetriever) Len() int { return len(m.matches) }

type mockExtractor struct {
	prices map[string][]float64
}

func (m *mockExtractor) Extract(text string) []float64 {
	return m.prices[text]
}

type mockAnalyzer struct {
	result     domain.Analysis
	lastPrices []float64
}

func (m *mockAnalyzer) Analyze(prices []float64) domain.Analysis {
	m.lastPrices = prices
	return m.result
}

type mockSynth struct {
	text        string
	lastMatches []domain.Match
}

func (m *mockSynth) Synthesize(_ string, matches []domain.Match, _ domain.Analysis) string {
	m.lastMatches = matches
	return m.text
}

func testConfig() Config {
	return Config{
		DefaultTopK:   3,
		MinQueryLen:   3,
		MaxQueryLen:   500,
		MinSimilarity: 0.10,
	}
}

func newTestEngine(r *mockRetriever, x *mockExtractor, a *mockAnalyzer, s *mockSynth, cfg Config) *Engine {
	return New(r, x, a, s, cfg, zap.NewNop())
}

func makeMatch(rank int, content string, sim float64) domain.Match {
	return domain.Match{
		Document:   domain.Document{ID: content, Content: content, Source: "test", Date: "2024-01-01"},
		Similarity: sim,
		Rank:       rank,
	}
}

// --- Tests ---

func TestAsk_Success(t *testing.T) {
	retriever := &mockRetriever{matches: []domain.Match{
		makeMatch(0, "doc-a", 0.9),
		makeMatch(1, "doc-b", 0.5),
	}}
	extractor := &mockExtractor{prices: map[string][]float64{
		"doc-a": {100, 110},
		"doc-b": {90},
	}}
	analyzer := &mockAnalyzer{result: domain.Analysis{
		Trend: domain.TrendBullish, Risk: domain.RiskLow, Signal: domain.SignalBuy,
	}}
	synth := &mockSynth{text: "answer text"}
	eng := newTestEngine(retriever, extractor, analyzer, synth, testConfig())

	ans, err := eng.Ask(context.Background(), "nifty banking outlook", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ans.Text != "answer text" {
		t.Errorf("expected synthesized text, got %q", ans.Text)
	}
	if ans.Question != "nifty banking outlook" {
		t.Errorf("unexpected question: %q", ans.Question)
	}
	if len(ans.Matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(ans.Matches))
	}
	if retriever.lastK != 2 {
		t.Errorf("expected k=2, got %d", retriever.lastK)
	}
}

func TestAsk_PricesCollectedInMatchOrder(t *testing.T) {
	retriever := &mockRetriever{matches: []domain.Match{
		makeMatch(0, "doc-a", 0.9),
		makeMatch(1, "doc-b", 0.5),
	}}
	extractor := &mockExtractor{prices: map[string][]float64{
		"doc-a": {100, 110},
		"doc-b": {90},
	}}
	analyzer := &mockAnalyzer{}
	eng := newTestEngine(retriever, extractor, analyzer, &mockSynth{}, testConfig())

	if _, err := eng.Ask(context.Background(), "prices", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []float64{100, 110, 90}
	if len(analyzer.lastPrices) != len(want) {
		t.Fatalf("expected %d prices, got %d", len(want), len(analyzer.lastPrices))
	}
	for i, p := range want {
		if analyzer.lastPrices[i] != p {
			t.Errorf("price[%d]: expected %v, got %v", i, p, analyzer.lastPrices[i])
		}
	}
}

func TestAsk_EmptyQuestion(t *testing.T) {
	eng := newTestEngine(&mockRetriever{}, &mockExtractor{}, &mockAnalyzer{}, &mockSynth{}, testConfig())

	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := eng.Ask(context.Background(), q, 3)
		if err == nil {
			t.Fatalf("expected error for question %q", q)
		}
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	}
}

func TestAsk_QuestionTooShort(t *testing.T) {
	eng := newTestEngine(&mockRetriever{}, &mockExtractor{}, &mockAnalyzer{}, &mockSynth{}, testConfig())

	_, err := eng.Ask(context.Background(), "ab", 3)
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestAsk_QuestionTooLong(t *testing.T) {
	eng := newTestEngine(&mockRetriever{}, &mockExtractor{}, &mockAnalyzer{}, &mockSynth{}, testConfig())

	_, err := eng.Ask(context.Background(), strings.Repeat("a", 501), 3)
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestAsk_ValidationSkipsRetrieval(t *testing.T) {
	retriever := &mockRetriever{}
	eng := newTestEngine(retriever, &mockExtractor{}, &mockAnalyzer{}, &mockSynth{}, testConfig())

	_, _ = eng.Ask(context.Background(), "", 3)
	if retriever.calls != 0 {
		t.Errorf("expected no retrieval on validation failure, got %d calls", retriever.calls)
	}
}

func TestAsk_DefaultTopK(t *testing.T) {
	retriever := &mockRetriever{}
	eng := newTestEngine(retriever, &mockExtractor{}, &mockAnalyzer{}, &mockSynth{}, testConfig())

	if _, err := eng.Ask(context.Background(), "nifty", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if retriever.lastK != 3 {
		t.Errorf("expected default k=3, got %d", retriever.lastK)
	}
}

func TestAsk_EmptyIndexSurfaced(t *testing.T) {
	retriever := &mockRetriever{err: domain.ErrEmptyIndex}
	eng := newTestEngine(retriever, &mockExtractor{}, &mockAnalyzer{}, &mockSynth{}, testConfig())

	_, err := eng.Ask(context.Background(), "nifty", 3)
	if !errors.Is(err, domain.ErrEmptyIndex) {
		t.Errorf("expected ErrEmptyIndex, got %v", err)
	}
}

func TestAsk_RetrieverError(t *testing.T) {
	retErr := errors.New("embedding provider unavailable")
	retriever := &mockRetriever{err: retErr}
	eng := newTestEngine(retriever, &mockExtractor{}, &mockAnalyzer{}, &mockSynth{}, testConfig())

	_, err := eng.Ask(context.Background(), "nifty", 3)
	if !errors.Is(err, retErr) {
		t.Errorf("expected wrapped retriever error, got %v", err)
	}
}

func TestAsk_MinSimilarityFilterAndRerank(t *testing.T) {
	retriever := &mockRetriever{matches: []domain.Match{
		makeMatch(0, "doc-a", 0.9),
		makeMatch(1, "doc-b", 0.05),
		makeMatch(2, "doc-c", 0.4),
	}}
	synth := &mockSynth{}
	eng := newTestEngine(retriever, &mockExtractor{}, &mockAnalyzer{}, synth, testConfig())

	ans, err := eng.Ask(context.Background(), "nifty", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ans.Matches) != 2 {
		t.Fatalf("expected 2 matches after filter, got %d", len(ans.Matches))
	}
	if ans.Matches[0].Document.ID != "doc-a" || ans.Matches[1].Document.ID != "doc-c" {
		t.Errorf("unexpected match order: %q, %q", ans.Matches[0].Document.ID, ans.Matches[1].Document.ID)
	}
	if ans.Matches[0].Rank != 0 || ans.Matches[1].Rank != 1 {
		t.Errorf("expected dense ranks after filter, got %d and %d", ans.Matches[0].Rank, ans.Matches[1].Rank)
	}
	if len(synth.lastMatches) != 2 {
		t.Errorf("synthesizer should see filtered matches, got %d", len(synth.lastMatches))
	}
}

func TestAsk_NoMatchesStillAnswers(t *testing.T) {
	retriever := &mockRetriever{}
	analyzer := &mockAnalyzer{result: domain.Analysis{
		Trend:  domain.TrendUnknown,
		Risk:   domain.RiskUnknown,
		Signal: domain.SignalUnknown,
		Status: domain.StatusInsufficientData,
	}}
	synth := &mockSynth{text: "no relevant data"}
	eng := newTestEngine(retriever, &mockExtractor{}, analyzer, synth, testConfig())

	ans, err := eng.Ask(context.Background(), "nifty", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ans.Matches) != 0 {
		t.Errorf("expected no matches, got %d", len(ans.Matches))
	}
	if !ans.Analysis.Insufficient() {
		t.Error("expected insufficient-data analysis")
	}
	if ans.Text != "no relevant data" {
		t.Errorf("unexpected answer text: %q", ans.Text)
	}
}
