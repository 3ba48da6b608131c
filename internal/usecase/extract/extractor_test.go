package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	e := New()

	tests := []struct {
		name string
		text string
		want []float64
	}{
		{
			name: "index close with thousands separator",
			text: "NIFTY closed at 22,150.50 today",
			want: []float64{22150.50},
		},
		{
			name: "no numbers",
			text: "no numbers here",
			want: nil,
		},
		{
			name: "multiple prices in document order",
			text: "HDFC Bank traded at 1,545.20 while SBI closed at 812.35",
			want: []float64{1545.20, 812.35},
		},
		{
			name: "currency prefix qualifies small numbers",
			text: "dividend of Rs 18 per share announced",
			want: []float64{18},
		},
		{
			name: "rupee symbol",
			text: "target price ₹95 per share",
			want: []float64{95},
		},
		{
			name: "inr marker",
			text: "valued at INR 2,500",
			want: []float64{2500},
		},
		{
			name: "percentages rejected",
			text: "the index rose 5.4% after gaining 2% yesterday",
			want: nil,
		},
		{
			name: "bare year rejected",
			text: "the budget for 2024 was announced",
			want: nil,
		},
		{
			name: "year with separator is a price",
			text: "closed at 2,024 on friday",
			want: []float64{2024},
		},
		{
			name: "year with decimal is a price",
			text: "support level at 2024.50",
			want: []float64{2024.50},
		},
		{
			name: "small bare numbers rejected",
			text: "page 7 of 12 covers the top 5 movers",
			want: nil,
		},
		{
			name: "three digits qualify without marker",
			text: "the stock bottomed at 845 last week",
			want: []float64{845},
		},
		{
			name: "suffix unit qualifies",
			text: "profit of 50 crore reported",
			want: []float64{50},
		},
		{
			name: "mixed noise and prices",
			text: "In 2023 the NIFTY 50 gained 20%, closing at 21,731.40 on Dec 29",
			want: []float64{21731.40},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, e.Extract(tc.text))
		})
	}
}

func TestExtract_MalformedTextNeverPanics(t *testing.T) {
	e := New()

	inputs := []string{"", ",,,", "₹", "Rs.", "%%", "12,34,56", "....", "Rs ,"}
	for _, in := range inputs {
		assert.NotPanics(t, func() { e.Extract(in) })
	}
}
