package models

import (
	"fmt"
	"time"
)

// Tick is a realtime trade event from the market stream.
type Tick struct {
	Symbol    string  `json:"symbol"`
	Timestamp int64   `json:"timestamp"` // unix seconds
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
}

// Candle is one daily OHLCV bar.
type Candle struct {
	Timestamp int64   `json:"timestamp"` // unix seconds
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Quote is a realtime quote snapshot.
type Quote struct {
	Symbol        string    `json:"symbol"`
	CurrentPrice  float64   `json:"current_price"`
	Change        float64   `json:"change"`
	PercentChange float64   `json:"percent_change"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Open          float64   `json:"open"`
	PreviousClose float64   `json:"previous_close"`
	Timestamp     time.Time `json:"timestamp"`
}

// CompanyProfile holds company reference data.
type CompanyProfile struct {
	Name              string  `json:"name"`
	Ticker            string  `json:"ticker"`
	Exchange          string  `json:"exchange"`
	Industry          string  `json:"industry"`
	MarketCap         float64 `json:"market_cap"`
	SharesOutstanding float64 `json:"shares_outstanding"`
	Website           string  `json:"website"`
	IPODate           string  `json:"ipo_date"`
}

// Recommendation is the latest analyst recommendation breakdown.
type Recommendation struct {
	Buy        int    `json:"buy"`
	Hold       int    `json:"hold"`
	Sell       int    `json:"sell"`
	StrongBuy  int    `json:"strong_buy"`
	StrongSell int    `json:"strong_sell"`
	Period     string `json:"period"`
}

// EarningsSurprise is the most recent reported earnings vs estimate.
type EarningsSurprise struct {
	Actual          float64 `json:"actual"`
	Estimate        float64 `json:"estimate"`
	Surprise        float64 `json:"surprise"`
	SurprisePercent float64 `json:"surprise_percent"`
	Period          string  `json:"period"`
}

// InsiderSentiment is the latest monthly share purchase ratio reading.
type InsiderSentiment struct {
	MSPR   float64 `json:"mspr"`
	Change float64 `json:"change"`
	Month  int     `json:"month"`
	Year   int     `json:"year"`
}

// Financials holds key valuation and profitability metrics for a ticker.
// Zero values mean the metric was unavailable from the provider.
type Financials struct {
	MarketCap       float64 `json:"market_cap"`
	Revenue         float64 `json:"revenue"`
	PERatio         float64 `json:"pe_ratio"`
	ForwardPE       float64 `json:"forward_pe"`
	EPS             float64 `json:"eps"`
	ProfitMargin    float64 `json:"profit_margin"`
	OperatingMargin float64 `json:"operating_margin"`
	ReturnOnEquity  float64 `json:"return_on_equity"`
	DebtToEquity    float64 `json:"debt_to_equity"`
	CurrentPrice    float64 `json:"current_price"`
	TargetMeanPrice float64 `json:"target_mean_price"`
	Recommendation  string  `json:"recommendation"`
}

// IndicatorReadings bundles the Alpha Vantage technical indicators fed to
// the market analyst. HasRSI, HasMACD, and HasSMA mark which fetches
// succeeded; a zero reading with its flag set is still a valid value.
type IndicatorReadings struct {
	RSI           float64 `json:"rsi"`
	MACD          float64 `json:"macd"`
	MACDSignal    float64 `json:"macd_signal"`
	MACDHistogram float64 `json:"macd_histogram"`
	SMA50         float64 `json:"sma50"`
	HasRSI        bool    `json:"has_rsi"`
	HasMACD       bool    `json:"has_macd"`
	HasSMA        bool    `json:"has_sma"`
}

// Statements holds recent financial statements rendered as text for prompts.
type Statements struct {
	IncomeStatement string `json:"income_statement"`
	BalanceSheet    string `json:"balance_sheet"`
	CashFlow        string `json:"cash_flow"`
}

// NewsItem is one headline with its source link.
type NewsItem struct {
	Title     string `json:"title"`
	Publisher string `json:"publisher"`
	Link      string `json:"link"`
	Published string `json:"published"`
}

// SearchResult is one web search hit.
type SearchResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date"`
}

// CryptoSnapshot holds crypto-specific market data (no equity metrics).
type CryptoSnapshot struct {
	Name              string  `json:"name"`
	Symbol            string  `json:"symbol"`
	CurrentPrice      float64 `json:"current_price"`
	MarketCap         float64 `json:"market_cap"`
	Volume24h         float64 `json:"volume_24h"`
	CirculatingSupply float64 `json:"circulating_supply"`
	TotalSupply       float64 `json:"total_supply"`
	DayHigh           float64 `json:"day_high"`
	DayLow            float64 `json:"day_low"`
	Week52High        float64 `json:"week_52_high"`
	Week52Low         float64 `json:"week_52_low"`
	ChangePercent24h  float64 `json:"price_change_24h"`
}

// FormatMoney renders large dollar values as $x.xx B / $x.xx M, like provider
// reports do. Values at or below a million are printed plainly.
func FormatMoney(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("$%.2f B", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2f M", v/1e6)
	case v == 0:
		return "N/A"
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}
