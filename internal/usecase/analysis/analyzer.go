// Package analysis computes descriptive market statistics from an extracted
// price series.
package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/marketlens/marketlens/internal/domain"
)

// Config holds the analyzer thresholds. All values come from external
// configuration so behavior is tunable without code change.
type Config struct {
	VolatilityLow  float64 // low/medium boundary
	VolatilityHigh float64 // medium/high boundary
	TrendEpsilon   float64
	SMAWindow      int
	HoldOnHighRisk bool // high risk forces Hold regardless of trend
}

// Analyzer derives trend, risk, and a trading signal from a price series.
type Analyzer struct {
	cfg Config
}

// New creates an analyzer with the given thresholds.
func New(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Analyze computes descriptive statistics over prices in document-rank order.
// An empty series yields the insufficient-data result: numeric fields stay
// nil and the classification enums are Unknown, never a zero default.
//
// Volatility is the population standard deviation, not the sample one: the
// series is the complete set of observed prices for this query, and the
// population form keeps single-price series at exactly zero.
func (a *Analyzer) Analyze(prices []float64) domain.Analysis {
	if len(prices) == 0 {
		return domain.Analysis{
			Trend:  domain.TrendUnknown,
			Risk:   domain.RiskUnknown,
			Signal: domain.SignalUnknown,
			Status: domain.StatusInsufficientData,
		}
	}

	mean := stat.Mean(prices, nil)
	maxP := floats.Max(prices)
	minP := floats.Min(prices)
	vol := stat.PopStdDev(prices, nil)

	trend := a.trend(prices)
	risk := a.risk(vol)

	result := domain.Analysis{
		Mean:       &mean,
		Max:        &maxP,
		Min:        &minP,
		Volatility: &vol,
		Trend:      trend,
		Risk:       risk,
		Signal:     a.signal(trend, risk),
	}

	if len(prices) >= a.cfg.SMAWindow && a.cfg.SMAWindow > 0 {
		sma := stat.Mean(prices[:a.cfg.SMAWindow], nil)
		result.SMA = &sma
	}

	return result
}

// trend compares the last price against the first in document-rank order.
// A single price is Neutral by definition.
func (a *Analyzer) trend(prices []float64) domain.Trend {
	if len(prices) < 2 {
		return domain.TrendNeutral
	}
	diff := prices[len(prices)-1] - prices[0]
	switch {
	case diff > a.cfg.TrendEpsilon:
		return domain.TrendBullish
	case diff < -a.cfg.TrendEpsilon:
		return domain.TrendBearish
	default:
		return domain.TrendNeutral
	}
}

func (a *Analyzer) risk(volatility float64) domain.RiskLevel {
	switch {
	case volatility < a.cfg.VolatilityLow:
		return domain.RiskLow
	case volatility < a.cfg.VolatilityHigh:
		return domain.RiskMedium
	default:
		return domain.RiskHigh
	}
}

// signal derives the recommendation jointly from trend and risk. Risk gates
// trend: high risk forces Hold even on a clear trend, unless the
// HoldOnHighRisk policy is disabled, in which case the signal follows the
// trend alone.
func (a *Analyzer) signal(trend domain.Trend, risk domain.RiskLevel) domain.Signal {
	if a.cfg.HoldOnHighRisk && risk == domain.RiskHigh {
		return domain.SignalHold
	}
	switch trend {
	case domain.TrendBullish:
		return domain.SignalBuy
	case domain.TrendBearish:
		return domain.SignalSell
	default:
		return domain.SignalHold
	}
}
