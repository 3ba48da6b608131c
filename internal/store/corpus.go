package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/marketlens/marketlens/internal/domain"
)

// corpusEntry mirrors one record of the preprocessed corpus file produced by
// the ingestion pipeline.
type corpusEntry struct {
	Source      string    `json:"source"`
	Timestamp   string    `json:"timestamp"`
	CleanText   string    `json:"clean_text"`
	CleanPrices []float64 `json:"clean_prices"`
}

// corpusNamespace seeds UUIDv5 derivation so the same corpus entry always
// maps to the same document ID. Re-ingesting an unchanged corpus into a
// persistent store then overwrites documents instead of duplicating them.
var corpusNamespace = uuid.MustParse("1b4e28ba-2fa1-11d2-883f-0016d3cca427")

// LoadCorpus reads a preprocessed corpus file and converts each entry into a
// Document. IDs are derived deterministically from the entry contents.
func LoadCorpus(path string) ([]domain.Document, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}

	var entries []corpusEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse corpus %s: %w", path, err)
	}

	docs := make([]domain.Document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, entryToDocument(e))
	}
	return docs, nil
}

// entryToDocument renders a corpus entry into the document text that gets
// embedded. Prices are appended so retrieval can surface numeric context.
func entryToDocument(e corpusEntry) domain.Document {
	var b strings.Builder
	b.WriteString("Stock Market Report\n")
	b.WriteString("Source: " + e.Source + "\n")
	b.WriteString("Date: " + e.Timestamp + "\n")
	b.WriteString("Market News: " + e.CleanText + "\n")
	if len(e.CleanPrices) > 0 {
		b.WriteString("Price Values: " + formatPrices(e.CleanPrices) + "\n")
	}

	date := e.Timestamp
	if date == "" {
		date = "unknown"
	}

	id := uuid.NewSHA1(corpusNamespace, []byte(e.Source+"\x00"+e.Timestamp+"\x00"+e.CleanText))

	return domain.Document{
		ID:      id.String(),
		Content: b.String(),
		Source:  e.Source,
		Date:    date,
	}
}

func formatPrices(prices []float64) string {
	parts := make([]string, len(prices))
	for i, p := range prices {
		parts[i] = strconv.FormatFloat(p, 'f', -1, 64)
	}
	return strings.Join(parts, ", ")
}
