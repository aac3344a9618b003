package models

// Requests for market HTTP endpoints. Defined in domain for consistency and reuse.

type SymbolRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,ticker"`
}

type HistoryRequest struct {
	Symbol   string `param:"symbol" json:"symbol" validate:"required,ticker"`
	Interval string `query:"interval" json:"interval" default:"1d" validate:"oneof=5m 15m 60m 1d 1wk 1mo"`
	Range    string `query:"range" json:"range" default:"3mo" validate:"max=8"`
}

type ScannerRequest struct {
	MinRS    int     `query:"minRs" json:"minRs" validate:"gte=0,lte=99"`
	MinEPS   float64 `query:"minEps" json:"minEps"`
	MinScore int     `query:"minScore" json:"minScore" validate:"gte=0,lte=8"`
	Stage    int     `query:"stage" json:"stage" validate:"gte=0,lte=4"`
	VolSurge bool    `query:"volSurge" json:"volSurge"`
	Sort     string  `query:"sort" json:"sort" default:"setupScore" validate:"oneof=ticker company price changePercent rsRating epsGrowth revenueGrowth operatingMargin weekHighPercent volumeRatio setupScore setupPassed stage"`
	Dir      string  `query:"dir" json:"dir" default:"desc" validate:"oneof=asc desc"`
}

type PositionSizeRequest struct {
	AccountSize float64  `json:"accountSize" validate:"gt=0"`
	RiskPct     float64  `json:"riskPct" default:"0.01" validate:"gt=0,lte=1"`
	Entry       float64  `json:"entry" validate:"gt=0"`
	Stop        *float64 `json:"stop" validate:"omitempty,gt=0"`
	StopPct     float64  `json:"stopPct" default:"0.075" validate:"gt=0,lt=1"`
	Target      *float64 `json:"target" validate:"omitempty,gt=0"`
}
