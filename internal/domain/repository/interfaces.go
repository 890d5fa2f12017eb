package repository

import (
	"context"

	"StockSage/internal/domain/models"
)

// MarketData provides equity quotes, bars and reference data.
type MarketData interface {
	Quote(ctx context.Context, symbol string) (*models.Quote, error)
	Candles(ctx context.Context, symbol string, days int) ([]models.Candle, error)
	Profile(ctx context.Context, symbol string) (*models.CompanyProfile, error)
	News(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error)
}

// FundamentalsData provides valuation metrics, financial statements, and
// technical indicator readings.
type FundamentalsData interface {
	Financials(ctx context.Context, symbol string) (*models.Financials, error)
	Statements(ctx context.Context, symbol string) (*models.Statements, error)
	Indicators(ctx context.Context, symbol string) (*models.IndicatorReadings, error)
}

// SentimentData provides analyst and insider sentiment readings.
type SentimentData interface {
	Recommendation(ctx context.Context, symbol string) (*models.Recommendation, error)
	Earnings(ctx context.Context, symbol string) (*models.EarningsSurprise, error)
	InsiderSentiment(ctx context.Context, symbol string) (*models.InsiderSentiment, error)
}

// CryptoData provides crypto market snapshots and price history.
type CryptoData interface {
	Snapshot(ctx context.Context, symbol string) (*models.CryptoSnapshot, error)
	Candles(ctx context.Context, symbol string, days int) ([]models.Candle, error)
}

// Searcher runs web searches for news and social sentiment context.
type Searcher interface {
	Search(ctx context.Context, query, topic string, maxResults int) ([]models.SearchResult, error)
}

// ChatModel generates one completion from a system and user prompt.
type ChatModel interface {
	Generate(ctx context.Context, system, user string) (string, error)
	Model() string
}

// AnalysisStore persists completed analyses and chat history.
// Implementations are fail-soft: callers log write errors and continue.
type AnalysisStore interface {
	SaveAnalysis(ctx context.Context, a *models.Analysis) error
	SaveChatMessage(ctx context.Context, m *models.ChatMessage) error
	RecentAnalyses(ctx context.Context, ticker string, limit int) ([]models.Analysis, error)
	LatestAnalysis(ctx context.Context, ticker string) (*models.Analysis, error)
}

// SessionStore caches per-session analysis context for follow-up questions.
type SessionStore interface {
	Put(ctx context.Context, sessionID string, sc *models.SessionContext) error
	Get(ctx context.Context, sessionID string) (*models.SessionContext, error)
}

// Publisher emits analysis lifecycle events.
type Publisher interface {
	PublishAnalysisCompleted(ctx context.Context, ev *models.AnalysisEvent) error
}

// MarketStream delivers realtime ticks for the configured symbols.
type MarketStream interface {
	Start(ctx context.Context) error
	Ticks() <-chan models.Tick
	Close() error
}
