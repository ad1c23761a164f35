package dto

import "time"

// Bar is a single daily OHLCV bar.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// PriceHistory is the chronologically ascending daily history for one
// symbol, as returned by the market data provider.
type PriceHistory struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

// Closes returns the close column.
func (h *PriceHistory) Closes() []float64 {
	closes := make([]float64, len(h.Bars))
	for i, b := range h.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Volumes returns the volume column.
func (h *PriceHistory) Volumes() []int64 {
	volumes := make([]int64, len(h.Bars))
	for i, b := range h.Bars {
		volumes[i] = b.Volume
	}
	return volumes
}

// BatchMetrics is the per-symbol snapshot used by the stage-1 filter.
// Recomputed on every scan, never persisted.
type BatchMetrics struct {
	Symbol     string  `json:"symbol"`
	Price      float64 `json:"price"`
	Volume     int64   `json:"volume"`
	AvgVolume  float64 `json:"avg_volume"`
	Volatility float64 `json:"volatility"`
}

// TechnicalProfile holds the indicator values for a symbol that passed
// both filter stages.
type TechnicalProfile struct {
	Momentum    float64 `json:"momentum"`
	Volatility  float64 `json:"volatility"`
	RSI         float64 `json:"rsi"`
	VolumeSurge float64 `json:"volume_surge"`
}

// CompanyInfo is the quote-summary enrichment for a profile. All fields
// degrade to zero values when the lookup fails.
type CompanyInfo struct {
	Name      string  `json:"name"`
	Sector    string  `json:"sector"`
	MarketCap float64 `json:"market_cap"`
}

// StockProfile is the final output record for one promising stock.
type StockProfile struct {
	Symbol       string           `json:"symbol"`
	CompanyName  string           `json:"company_name"`
	Sector       string           `json:"sector"`
	MarketCap    float64          `json:"market_cap"`
	CurrentPrice float64          `json:"current_price"`
	Volume       int64            `json:"volume"`
	ScanTime     time.Time        `json:"scan_time"`
	Technical    TechnicalProfile `json:"technical"`
	News         NewsAnalysis     `json:"news"`
	Reasons      []string         `json:"reasons"`
}
