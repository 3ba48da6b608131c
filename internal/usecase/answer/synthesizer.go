// Package answer assembles retrieved excerpts and market analysis into a
// deterministic, template-based response. This is extractive synthesis: no
// text is generated beyond the fixed template and the retrieved content.
package answer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/marketlens/marketlens/internal/domain"
)

var (
	sentenceSplit = regexp.MustCompile(`(?:[.!?])\s+`)
	keywordToken  = regexp.MustCompile(`\b\w{4,}\b`)
)

// Config holds synthesis bounds.
type Config struct {
	MaxExcerptLen int // per-excerpt truncation length
	MaxFacts      int // cap on extracted key facts
}

// Synthesizer renders the final answer text.
type Synthesizer struct {
	cfg Config
}

// New creates a synthesizer.
func New(cfg Config) *Synthesizer {
	return &Synthesizer{cfg: cfg}
}

// Synthesize produces the user-facing answer. When nothing was retrieved it
// states so explicitly instead of fabricating content; when the analysis has
// no price data the numeric section is replaced with an insufficient-data
// note.
func (s *Synthesizer) Synthesize(question string, matches []domain.Match, analysis domain.Analysis) string {
	if len(matches) == 0 {
		return fmt.Sprintf(
			"No relevant data found for %q. Try different keywords related to NIFTY 50 stocks.",
			question,
		)
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Question: %s\n\n", question)

	facts := s.extractFacts(question, matches)
	if len(facts) > 0 {
		b.WriteString("Key facts from retrieved documents:\n")
		for _, f := range facts {
			b.WriteString("- " + f + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Retrieved excerpts:\n")
	for _, m := range matches {
		fmt.Fprintf(&b, "[%d] (%s, %s, relevance %.1f%%) %s\n",
			m.Rank+1, sourceLabel(m.Document.Source), m.Document.Date,
			m.Relevance(), truncate(m.Document.Content, s.cfg.MaxExcerptLen))
	}
	b.WriteString("\n")

	b.WriteString(s.analysisSection(analysis))

	return b.String()
}

// analysisSection restates the analysis in plain language.
func (s *Synthesizer) analysisSection(a domain.Analysis) string {
	if a.Insufficient() {
		return "Market analysis: insufficient data - no price figures were found in the retrieved documents.\n"
	}

	var b strings.Builder
	b.WriteString("Market analysis:\n")
	fmt.Fprintf(&b, "- Mean price: %.2f (min %.2f, max %.2f)\n", *a.Mean, *a.Min, *a.Max)
	fmt.Fprintf(&b, "- Volatility: %.2f, indicating %s risk\n", *a.Volatility, a.Risk)
	if a.SMA != nil {
		fmt.Fprintf(&b, "- Simple moving average: %.2f\n", *a.SMA)
	}
	fmt.Fprintf(&b, "- Trend: %s\n", a.Trend)
	fmt.Fprintf(&b, "- Trading signal: %s\n", a.Signal)
	return b.String()
}

// extractFacts picks sentences that share at least one keyword (words of four
// or more letters) with the question and are long enough to carry a claim.
// Falls back to the leading sentences of the top match when nothing overlaps.
func (s *Synthesizer) extractFacts(question string, matches []domain.Match) []string {
	keywords := keywordToken.FindAllString(strings.ToLower(question), -1)

	var facts []string
	seen := make(map[string]struct{})

	for _, m := range matches {
		for _, sentence := range splitSentences(m.Document.Content) {
			if len(sentence) <= 30 {
				continue
			}
			if !containsAnyKeyword(strings.ToLower(sentence), keywords) {
				continue
			}
			if _, dup := seen[sentence]; dup {
				continue
			}
			seen[sentence] = struct{}{}
			facts = append(facts, sentence)
			if len(facts) == s.cfg.MaxFacts {
				return facts
			}
		}
	}

	if len(facts) == 0 {
		for _, sentence := range splitSentences(matches[0].Document.Content) {
			if len(sentence) > 30 {
				facts = append(facts, sentence)
			}
			if len(facts) == 3 {
				break
			}
		}
	}

	return facts
}

func sourceLabel(source string) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return "unknown source"
	}
	return source
}

func splitSentences(text string) []string {
	parts := sentenceSplit.Split(strings.TrimSpace(text), -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.Trim(p, ".!?"))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func containsAnyKeyword(sentence string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(sentence, kw) {
			return true
		}
	}
	return false
}

// truncate cuts text to max bytes on a rune boundary, appending an ellipsis
// when anything was dropped.
func truncate(text string, max int) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if max <= 0 || len(text) <= max {
		return text
	}
	cut := text[:max]
	for len(cut) > 0 && !isRuneStart(text[len(cut)]) {
		cut = cut[:len(cut)-1]
	}
	return cut + "..."
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
