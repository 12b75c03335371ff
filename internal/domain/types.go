// Package domain holds the pure, deterministic scoring and decision logic
// for every pipeline stage. Nothing in this package performs I/O: each
// stage is a function from inputs already read from persistence/market-data
// activities to a stage-specific result record, so stage code stays
// trivially replayable by the orchestrator.
package domain

import "time"

// Header is embedded in every stage-produced record. It replaces the
// teacher's dynamic per-stage document shape with a sum-type-over-variants
// model: each stage has its own Go struct, but all of them carry the same
// three identifying fields, so persistence/indexing code can be generic
// over "any record with a Header" where it needs to be (e.g. the stage run
// ledger) without reflecting into stage-specific fields.
type Header struct {
	Symbol      string    `json:"symbol" db:"symbol"`
	Week        string    `json:"week" db:"week"` // ISO week start date, YYYY-MM-DD, Monday 00:00 market-local
	CalculatedAt time.Time `json:"calculated_at" db:"calculated_at"`
}

// Tier is the S1 quality tier assigned to a stock.
type Tier string

const (
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
	TierD Tier = "D"
)

// Stock is the S1 universe record (§3).
type Stock struct {
	Symbol        string  `json:"symbol" db:"symbol"`
	Name          string  `json:"name" db:"name"`
	ISIN          string  `json:"isin" db:"isin"`
	Sector        string  `json:"sector" db:"sector"`
	LotSize       int     `json:"lot_size" db:"lot_size"`
	IsMTF         bool    `json:"is_mtf" db:"is_mtf"`
	InNifty50     bool    `json:"in_nifty_50" db:"in_nifty_50"`
	InNifty100    bool    `json:"in_nifty_100" db:"in_nifty_100"`
	InNifty200    bool    `json:"in_nifty_200" db:"in_nifty_200"`
	InNifty500    bool    `json:"in_nifty_500" db:"in_nifty_500"`
	QualityScore  float64 `json:"quality_score" db:"quality_score"`
	Tier          Tier    `json:"tier" db:"tier"`
	Active        bool    `json:"active" db:"active"`
}

// DailyBar is a single trading day's OHLCV for a symbol.
type DailyBar struct {
	Symbol   string    `json:"symbol" db:"symbol"`
	Date     time.Time `json:"date" db:"date"`
	Open     float64   `json:"open" db:"open"`
	High     float64   `json:"high" db:"high"`
	Low      float64   `json:"low" db:"low"`
	Close    float64   `json:"close" db:"close"`
	Volume   float64   `json:"volume" db:"volume"`
	Turnover float64   `json:"turnover" db:"turnover"`
}

// WeeklyBar is a DailyBar resampled onto an ISO week (Monday-Friday).
type WeeklyBar struct {
	Symbol string    `json:"symbol" db:"symbol"`
	Week   time.Time `json:"week" db:"week"`
	Open   float64   `json:"open" db:"open"`
	High   float64   `json:"high" db:"high"`
	Low    float64   `json:"low" db:"low"`
	Close  float64   `json:"close" db:"close"`
	Volume float64   `json:"volume" db:"volume"`
}

// Indicators holds the locally-computed technical indicators for a symbol
// on a given date (§4.2 — computed locally from DailyBar, never taken from
// the provider, to avoid drift).
type Indicators struct {
	Symbol   string    `json:"symbol" db:"symbol"`
	Date     time.Time `json:"date" db:"date"`
	SMA20    float64   `json:"sma20" db:"sma20"`
	SMA50    float64   `json:"sma50" db:"sma50"`
	SMA200   float64   `json:"sma200" db:"sma200"`
	ATR14    float64   `json:"atr14" db:"atr14"`
	RSI14    float64   `json:"rsi14" db:"rsi14"`
	MACDHist float64   `json:"macd_hist" db:"macd_hist"`
	Vol20    float64   `json:"vol20" db:"vol20"` // 20-day realized volatility of daily returns
	Slope20  float64   `json:"slope20" db:"slope20"`
	Slope50  float64   `json:"slope50" db:"slope50"`
	Slope200 float64   `json:"slope200" db:"slope200"`
}

// Benchmark holds Nifty-wide reference data for a date (§3).
type Benchmark struct {
	Date         time.Time `json:"date" db:"date"`
	Close        float64   `json:"close" db:"close"`
	Return1M     float64   `json:"return_1m" db:"return_1m"`
	Return3M     float64   `json:"return_3m" db:"return_3m"`
	Return6M     float64   `json:"return_6m" db:"return_6m"`
	ATR14        float64   `json:"atr14" db:"atr14"`
	Vol30        float64   `json:"vol30" db:"vol30"`
}
