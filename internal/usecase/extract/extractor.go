// Package extract parses price mentions out of retrieved document text.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// candidate matches one numeric token with optional currency context:
// an optional prefix marker (₹, Rs, Rs., INR), digit groups with optional
// thousands separators and decimal part, an optional percent sign, and an
// optional suffix unit (rupees, crore, lakh).
var candidate = regexp.MustCompile(
	`(?i)(₹|\bRs\.?|\bINR\b)?[ ]?(\d{1,3}(?:,\d{3})+|\d+)(\.\d+)?(%)?(?:[ ]?(rupees\b|crore\b|lakh\b))?`,
)

// Extractor recognizes price mentions in free text. A number qualifies as a
// price when it sits next to a currency marker, or when it has at least three
// digits before any decimal point. Percentages and standalone four-digit
// years never qualify; incidental small numbers (page numbers, counts) are
// filtered by the three-digit rule.
type Extractor struct{}

// New creates a price extractor.
func New() *Extractor { return &Extractor{} }

// Extract returns all qualifying prices in left-to-right order of appearance.
// It returns an empty slice rather than failing when nothing matches, and
// silently skips tokens that do not parse.
func (e *Extractor) Extract(text string) []float64 {
	var prices []float64

	for _, m := range candidate.FindAllStringSubmatch(text, -1) {
		marker := m[1] != "" || m[5] != ""
		intPart := m[2]
		decPart := m[3]
		percent := m[4] != ""

		if percent {
			continue
		}

		digits := strings.ReplaceAll(intPart, ",", "")
		if !marker && len(digits) < 3 {
			continue
		}
		if !marker && isYear(digits, intPart, decPart) {
			continue
		}

		v, err := strconv.ParseFloat(digits+decPart, 64)
		if err != nil {
			continue
		}
		prices = append(prices, v)
	}

	return prices
}

// isYear reports whether a bare four-digit integer looks like a calendar
// year. Thousands separators or a decimal part disqualify the year reading.
func isYear(digits, intPart, decPart string) bool {
	if len(digits) != 4 || decPart != "" || strings.Contains(intPart, ",") {
		return false
	}
	v, err := strconv.Atoi(digits)
	if err != nil {
		return false
	}
	return v >= 1900 && v <= 2099
}
