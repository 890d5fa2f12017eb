package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"StockSage/internal/agents"
	"StockSage/internal/domain/models"
	applogger "StockSage/pkg/logger"
	"StockSage/pkg/metrics"
)

// bullishResponse drives a deterministic BUY run through every agent: the
// decision and action markers resolve to BUY, the verdict to BULL_WINS, and
// the text is long enough that the risk judge does not fall back.
const bullishResponse = `## Analysis
แนวโน้มเติบโตแข็งแกร่ง ปัจจัยพื้นฐานดี มีกำไรต่อเนื่อง
Signal: BULLISH
VERDICT: BULL_WINS
ACTION: BUY
Confidence: 0.80`

type fakeLLM struct {
	mu       sync.Mutex
	response string
	calls    int
}

func (f *fakeLLM) Generate(ctx context.Context, system, user string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.response, nil
}

func (f *fakeLLM) Model() string { return "fake-model" }

type fakeMarketData struct{}

func (fakeMarketData) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	return &models.Quote{Symbol: symbol, CurrentPrice: 150}, nil
}

func (fakeMarketData) Candles(ctx context.Context, symbol string, days int) ([]models.Candle, error) {
	return testCandles(60), nil
}

func (fakeMarketData) Profile(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	return &models.CompanyProfile{Name: "Apple Inc", Ticker: symbol}, nil
}

func (fakeMarketData) News(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error) {
	return []models.NewsItem{{Title: "Earnings beat expectations", Publisher: "wire"}}, nil
}

type fakeFundamentals struct{}

func (fakeFundamentals) Financials(ctx context.Context, symbol string) (*models.Financials, error) {
	return &models.Financials{
		MarketCap:      2.5e12,
		PERatio:        20,
		ReturnOnEquity: 0.25,
		ProfitMargin:   0.22,
		DebtToEquity:   80,
	}, nil
}

func (fakeFundamentals) Statements(ctx context.Context, symbol string) (*models.Statements, error) {
	return &models.Statements{IncomeStatement: "Total Revenue: $100.00 B"}, nil
}

func (fakeFundamentals) Indicators(ctx context.Context, symbol string) (*models.IndicatorReadings, error) {
	return &models.IndicatorReadings{
		RSI: 62.5, HasRSI: true,
		MACD: 1.2, MACDSignal: 1.0, MACDHistogram: 0.2, HasMACD: true,
		SMA50: 180.5, HasSMA: true,
	}, nil
}

type fakeSentiment struct{}

func (fakeSentiment) Recommendation(ctx context.Context, symbol string) (*models.Recommendation, error) {
	return &models.Recommendation{Buy: 20, Hold: 5, Sell: 1}, nil
}

func (fakeSentiment) Earnings(ctx context.Context, symbol string) (*models.EarningsSurprise, error) {
	return &models.EarningsSurprise{}, nil
}

func (fakeSentiment) InsiderSentiment(ctx context.Context, symbol string) (*models.InsiderSentiment, error) {
	return &models.InsiderSentiment{}, nil
}

type fakeCrypto struct{}

func (fakeCrypto) Snapshot(ctx context.Context, symbol string) (*models.CryptoSnapshot, error) {
	return &models.CryptoSnapshot{Name: "Bitcoin", Symbol: symbol, CurrentPrice: 65000}, nil
}

func (fakeCrypto) Candles(ctx context.Context, symbol string, days int) ([]models.Candle, error) {
	return testCandles(30), nil
}

type fakeSearcher struct{}

func (fakeSearcher) Search(ctx context.Context, query, topic string, maxResults int) ([]models.SearchResult, error) {
	return []models.SearchResult{{Title: "Investors stay positive", URL: "https://example.com/a"}}, nil
}

type fakeStore struct {
	mu       sync.Mutex
	analyses []*models.Analysis
	messages []*models.ChatMessage
	saveErr  error
}

func (s *fakeStore) SaveAnalysis(ctx context.Context, a *models.Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.analyses = append(s.analyses, a)
	return nil
}

func (s *fakeStore) SaveChatMessage(ctx context.Context, m *models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m)
	return nil
}

func (s *fakeStore) RecentAnalyses(ctx context.Context, ticker string, limit int) ([]models.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Analysis
	for _, a := range s.analyses {
		if ticker == "" || a.Ticker == ticker {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *fakeStore) LatestAnalysis(ctx context.Context, ticker string) (*models.Analysis, error) {
	rows, _ := s.RecentAnalyses(ctx, ticker, 1)
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[len(rows)-1], nil
}

type fakeSessions struct {
	mu   sync.Mutex
	data map[string]*models.SessionContext
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{data: make(map[string]*models.SessionContext)}
}

func (s *fakeSessions) Put(ctx context.Context, sessionID string, sc *models.SessionContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = sc
	return nil
}

func (s *fakeSessions) Get(ctx context.Context, sessionID string) (*models.SessionContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[sessionID], nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*models.AnalysisEvent
}

func (p *fakePublisher) PublishAnalysisCompleted(ctx context.Context, ev *models.AnalysisEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func testCandles(n int) []models.Candle {
	candles := make([]models.Candle, 0, n)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		price := 100 + float64(i)
		candles = append(candles, models.Candle{
			Timestamp: base.AddDate(0, 0, i).Unix(),
			Open:      price - 0.5,
			High:      price + 1,
			Low:       price - 1,
			Close:     price,
			Volume:    1_000_000,
		})
	}
	return candles
}

type orchFixture struct {
	orch      *Orchestrator
	store     *fakeStore
	sessions  *fakeSessions
	publisher *fakePublisher
	llm       *fakeLLM
	team      *agents.Team
}

func newOrchFixture(t *testing.T) *orchFixture {
	t.Helper()
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	rec := metrics.New()
	llm := &fakeLLM{response: bullishResponse}
	team := agents.NewTeam(llm, log, rec)
	store := &fakeStore{}
	sessions := newFakeSessions()
	publisher := &fakePublisher{}

	orch := NewOrchestrator(OrchestratorDeps{
		Team:         team,
		Market:       fakeMarketData{},
		Fundamentals: fakeFundamentals{},
		Sentiment:    fakeSentiment{},
		Crypto:       fakeCrypto{},
		Search:       fakeSearcher{},
		Store:        store,
		Sessions:     sessions,
		Publisher:    publisher,
		Recorder:     rec,
		Logger:       log,
	})
	return &orchFixture{orch: orch, store: store, sessions: sessions, publisher: publisher, llm: llm, team: team}
}

func TestRunStockFlow(t *testing.T) {
	fx := newOrchFixture(t)

	progress := make(chan models.Progress, 64)
	analysis, err := fx.orch.Run(context.Background(), "sess-1", "AAPL", "stock-analyst", progress)
	close(progress)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if analysis.Decision != models.DecisionBuy {
		t.Errorf("decision = %s, want BUY", analysis.Decision)
	}
	if analysis.Flow != models.FlowStock {
		t.Errorf("flow = %s, want stock", analysis.Flow)
	}
	if analysis.Company != "Apple Inc" {
		t.Errorf("company = %q", analysis.Company)
	}

	var messages []string
	for p := range progress {
		messages = append(messages, p.Message)
	}
	joined := strings.Join(messages, "")
	for _, want := range []string{
		"เริ่มวิเคราะห์หุ้น **AAPL**",
		"**Phase 1:** กำลังรวบรวมข้อมูล",
		"**Phase 2:** Bull vs Bear Debate",
		"**Phase 3:** Moderating debate",
		"**Phase 4:** Risk Analysis",
		"**Phase 5:** Final Decision",
		"คำตัดสินสุดท้าย: BUY",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("progress missing %q", want)
		}
	}

	// The report sections must appear in pipeline order.
	ordered := []string{
		"# 📊 รายงานการวิเคราะห์หุ้น AAPL",
		"**คำตัดสินสุดท้าย:** BUY",
		"## 📊 Quantitative Metrics Score",
		"## ⚠️ Disclaimer",
	}
	last := -1
	for _, marker := range ordered {
		idx := strings.Index(analysis.Report, marker)
		if idx < 0 {
			t.Fatalf("report missing %q", marker)
		}
		if idx < last {
			t.Errorf("report section %q out of order", marker)
		}
		last = idx
	}

	if len(fx.store.analyses) != 1 {
		t.Fatalf("stored analyses = %d, want 1", len(fx.store.analyses))
	}
	if len(fx.publisher.events) != 1 || fx.publisher.events[0].Ticker != "AAPL" {
		t.Fatalf("published events = %+v", fx.publisher.events)
	}
	sc, _ := fx.sessions.Get(context.Background(), "sess-1")
	if sc == nil || sc.Ticker != "AAPL" {
		t.Fatalf("session context = %+v", sc)
	}
}

func TestRunCryptoFlow(t *testing.T) {
	fx := newOrchFixture(t)

	analysis, err := fx.orch.Run(context.Background(), "sess-2", "BTC", "stock-analyst", nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if analysis.Flow != models.FlowCrypto {
		t.Fatalf("flow = %s, want crypto", analysis.Flow)
	}
	if analysis.Ticker != "BTC-USD" {
		t.Errorf("ticker = %s, want BTC-USD", analysis.Ticker)
	}
	if analysis.Signal != models.SignalBullish {
		t.Errorf("signal = %s, want BULLISH", analysis.Signal)
	}
	if analysis.Decision != models.DecisionBuy {
		t.Errorf("decision = %s, want BUY", analysis.Decision)
	}
	if !strings.Contains(analysis.Report, "# 💰 รายงานการวิเคราะห์ Cryptocurrency BTC-USD") {
		t.Errorf("report missing crypto header")
	}
	if !strings.Contains(analysis.Report, "Cryptocurrency มีความผันผวนสูงมาก") {
		t.Errorf("report missing crypto disclaimer")
	}
}

func TestRunStoreFailureIsSoft(t *testing.T) {
	fx := newOrchFixture(t)
	fx.store.saveErr = fmt.Errorf("clickhouse down")

	analysis, err := fx.orch.Run(context.Background(), "sess-3", "MSFT", "stock-analyst", nil)
	if err != nil {
		t.Fatalf("Run should not fail on store errors: %v", err)
	}
	if analysis == nil || analysis.Decision != models.DecisionBuy {
		t.Fatalf("analysis = %+v", analysis)
	}
	if len(fx.publisher.events) != 1 {
		t.Errorf("event should still publish, got %d", len(fx.publisher.events))
	}
}

func TestRunCancelled(t *testing.T) {
	fx := newOrchFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := fx.orch.Run(ctx, "sess-4", "AAPL", "stock-analyst", nil); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}
