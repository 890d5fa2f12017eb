package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"StockSage/internal/domain/models"
	pkgch "StockSage/pkg/clickhouse"
)

// AnalysisSchema holds the idempotent DDL for the analysis tables.
var AnalysisSchema = []string{
	`CREATE TABLE IF NOT EXISTS analyses (
		id String,
		ticker String,
		company String,
		flow String,
		decision String,
		signal String,
		confidence Float64,
		technical_score Float64,
		fundamental_score Float64,
		sentiment_score Float64,
		combined_score Float64,
		score_signal String,
		report String,
		model String,
		created_at DateTime
	) ENGINE = MergeTree()
	ORDER BY (ticker, created_at)`,

	`CREATE TABLE IF NOT EXISTS chat_messages (
		session_id String,
		role String,
		content String,
		ticker String,
		created_at DateTime
	) ENGINE = MergeTree()
	ORDER BY (session_id, created_at)`,
}

// ClickHouseAnalysisStore persists analyses and chat history in ClickHouse.
// Writes are best-effort from the caller's perspective: the orchestrator
// logs store errors and continues.
type ClickHouseAnalysisStore struct {
	db *sql.DB
}

func NewClickHouseAnalysisStore(ch *pkgch.Client) *ClickHouseAnalysisStore {
	return &ClickHouseAnalysisStore{db: ch.DB()}
}

// Init creates the tables.
func (s *ClickHouseAnalysisStore) Init(ctx context.Context, ch *pkgch.Client) error {
	return ch.InitSchema(ctx, AnalysisSchema)
}

func (s *ClickHouseAnalysisStore) SaveAnalysis(ctx context.Context, a *models.Analysis) error {
	const q = `INSERT INTO analyses
		(id, ticker, company, flow, decision, signal, confidence,
		 technical_score, fundamental_score, sentiment_score, combined_score, score_signal,
		 report, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, q,
		a.ID, a.Ticker, a.Company, string(a.Flow), string(a.Decision), string(a.Signal),
		a.Confidence,
		a.Scores.Technical, a.Scores.Fundamental, a.Scores.Sentiment, a.Scores.Combined,
		string(a.Scores.Signal),
		a.Report, a.Model, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

func (s *ClickHouseAnalysisStore) SaveChatMessage(ctx context.Context, m *models.ChatMessage) error {
	const q = `INSERT INTO chat_messages (session_id, role, content, ticker, created_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, q, m.SessionID, m.Role, m.Content, m.Ticker, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("save chat message: %w", err)
	}
	return nil
}

// RecentAnalyses returns the newest analyses, filtered by ticker when one is
// given.
func (s *ClickHouseAnalysisStore) RecentAnalyses(ctx context.Context, ticker string, limit int) ([]models.Analysis, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}

	q := `SELECT id, ticker, company, flow, decision, signal, confidence,
		technical_score, fundamental_score, sentiment_score, combined_score, score_signal,
		report, model, created_at
		FROM analyses`
	args := []interface{}{}
	if ticker != "" {
		q += ` WHERE ticker = ?`
		args = append(args, ticker)
	}
	q += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("recent analyses: %w", err)
	}
	defer rows.Close()

	out := make([]models.Analysis, 0, limit)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recent analyses rows: %w", err)
	}
	return out, nil
}

// LatestAnalysis returns the most recent analysis for a ticker, or nil when
// none exists.
func (s *ClickHouseAnalysisStore) LatestAnalysis(ctx context.Context, ticker string) (*models.Analysis, error) {
	results, err := s.RecentAnalyses(ctx, ticker, 1)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// NoopAnalysisStore stands in when ClickHouse is disabled. Reads come back
// empty and writes succeed silently, matching the original's optional
// document store.
type NoopAnalysisStore struct{}

func (NoopAnalysisStore) SaveAnalysis(context.Context, *models.Analysis) error       { return nil }
func (NoopAnalysisStore) SaveChatMessage(context.Context, *models.ChatMessage) error { return nil }
func (NoopAnalysisStore) RecentAnalyses(context.Context, string, int) ([]models.Analysis, error) {
	return nil, nil
}
func (NoopAnalysisStore) LatestAnalysis(context.Context, string) (*models.Analysis, error) {
	return nil, nil
}

func scanAnalysis(rows *sql.Rows) (*models.Analysis, error) {
	var (
		a         models.Analysis
		flow      string
		decision  string
		signal    string
		scoreSig  string
		createdAt time.Time
	)
	err := rows.Scan(
		&a.ID, &a.Ticker, &a.Company, &flow, &decision, &signal, &a.Confidence,
		&a.Scores.Technical, &a.Scores.Fundamental, &a.Scores.Sentiment, &a.Scores.Combined,
		&scoreSig, &a.Report, &a.Model, &createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan analysis: %w", err)
	}
	a.Flow = models.Flow(flow)
	a.Decision = models.Decision(decision)
	a.Signal = models.Signal(signal)
	a.Scores.Signal = models.Signal(scoreSig)
	a.CreatedAt = createdAt
	return &a, nil
}
