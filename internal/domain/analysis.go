package domain

// Trend is the directional classification of a price series.
type Trend string

const (
	// TrendBullish indicates the last price exceeds the first beyond epsilon.
	TrendBullish Trend = "bullish"
	// TrendBearish indicates the last price is below the first beyond epsilon.
	TrendBearish Trend = "bearish"
	// TrendNeutral indicates no significant move, or a single price point.
	TrendNeutral Trend = "neutral"
	// TrendUnknown indicates no price data at all.
	TrendUnknown Trend = "unknown"
)

// RiskLevel classifies volatility against configured cutoffs.
type RiskLevel string

const (
	// RiskLow is volatility below the low/medium cutoff.
	RiskLow RiskLevel = "low"
	// RiskMedium is volatility between the cutoffs.
	RiskMedium RiskLevel = "medium"
	// RiskHigh is volatility at or above the medium/high cutoff.
	RiskHigh RiskLevel = "high"
	// RiskUnknown indicates no price data at all.
	RiskUnknown RiskLevel = "unknown"
)

// Signal is the derived trading recommendation.
type Signal string

const (
	// SignalBuy is issued for a bullish trend at low or medium risk.
	SignalBuy Signal = "buy"
	// SignalSell is issued for a bearish trend at low or medium risk.
	SignalSell Signal = "sell"
	// SignalHold is issued when risk is high or the trend is neutral.
	SignalHold Signal = "hold"
	// SignalUnknown indicates no price data at all.
	SignalUnknown Signal = "unknown"
)

// StatusInsufficientData marks an Analysis computed from an empty price series.
const StatusInsufficientData = "insufficient-data"

// Analysis is the derived statistical view of the prices extracted from
// retrieved documents. Numeric fields are nil when no prices were found;
// zero would be a misleading default for price statistics.
type Analysis struct {
	Mean       *float64
	Max        *float64
	Min        *float64
	Volatility *float64 // population standard deviation
	SMA        *float64 // simple moving average over the leading window
	Trend      Trend
	Risk       RiskLevel
	Signal     Signal
	Status     string // StatusInsufficientData, or empty when data was available
}

// Insufficient reports whether the analysis was computed from an empty series.
func (a Analysis) Insufficient() bool { return a.Status == StatusInsufficientData }

// Answer is the terminal output of one query, immutable for the lifetime of
// the request/response cycle.
type Answer struct {
	Question string
	Matches  []Match
	Analysis Analysis
	Text     string
}
