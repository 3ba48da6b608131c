package chi

import "github.com/marketlens/marketlens/internal/domain"

type queryRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

type queryResponse struct {
	Question string           `json:"question"`
	Answer   string           `json:"answer"`
	Analysis analysisResponse `json:"analysis"`
	Results  []resultItem     `json:"results"`
	DocCount int              `json:"doc_count"`
}

type analysisResponse struct {
	MeanPrice  *float64 `json:"mean_price"`
	MaxPrice   *float64 `json:"max_price"`
	MinPrice   *float64 `json:"min_price"`
	Volatility *float64 `json:"volatility"`
	SMA        *float64 `json:"sma,omitempty"`
	RiskLevel  string   `json:"risk_level"`
	Trend      string   `json:"trend"`
	Signal     string   `json:"trading_signal"`
	Status     string   `json:"status,omitempty"`
}

type resultItem struct {
	Content   string  `json:"content"`
	Source    string  `json:"source"`
	Date      string  `json:"date"`
	Relevance float64 `json:"relevance"`
}

type healthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Documents int               `json:"documents"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func answerToResponse(a domain.Answer) queryResponse {
	results := make([]resultItem, len(a.Matches))
	for i, m := range a.Matches {
		results[i] = resultItem{
			Content:   m.Document.Content,
			Source:    m.Document.Source,
			Date:      m.Document.Date,
			Relevance: m.Relevance(),
		}
	}

	return queryResponse{
		Question: a.Question,
		Answer:   a.Text,
		Analysis: analysisResponse{
			MeanPrice:  a.Analysis.Mean,
			MaxPrice:   a.Analysis.Max,
			MinPrice:   a.Analysis.Min,
			Volatility: a.Analysis.Volatility,
			SMA:        a.Analysis.SMA,
			RiskLevel:  string(a.Analysis.Risk),
			Trend:      string(a.Analysis.Trend),
			Signal:     string(a.Analysis.Signal),
			Status:     a.Analysis.Status,
		},
		Results:  results,
		DocCount: len(a.Matches),
	}
}
