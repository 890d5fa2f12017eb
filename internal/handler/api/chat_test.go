package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"StockSage/internal/agents"
	"StockSage/internal/domain/models"
	"StockSage/internal/usecase"
	applogger "StockSage/pkg/logger"
	"StockSage/pkg/metrics"
)

const cannedResponse = `แนวโน้มเติบโตแข็งแกร่ง ปัจจัยพื้นฐานดี มีกำไรต่อเนื่อง
Signal: BULLISH
VERDICT: BULL_WINS
ACTION: BUY
Confidence: 0.80`

type stubLLM struct{}

func (stubLLM) Generate(ctx context.Context, system, user string) (string, error) {
	return cannedResponse, nil
}

func (stubLLM) Model() string { return "stub" }

type stubMarket struct{}

func (stubMarket) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	return &models.Quote{Symbol: symbol, CurrentPrice: 100}, nil
}

func (stubMarket) Candles(ctx context.Context, symbol string, days int) ([]models.Candle, error) {
	candles := make([]models.Candle, 60)
	for i := range candles {
		price := 100 + float64(i)
		candles[i] = models.Candle{
			Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i).Unix(),
			Open:      price, High: price + 1, Low: price - 1, Close: price, Volume: 1e6,
		}
	}
	return candles, nil
}

func (stubMarket) Profile(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	return &models.CompanyProfile{Name: "Test Corp", Ticker: symbol}, nil
}

func (stubMarket) News(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error) {
	return nil, nil
}

type stubFundamentals struct{}

func (stubFundamentals) Financials(ctx context.Context, symbol string) (*models.Financials, error) {
	return &models.Financials{PERatio: 18, ReturnOnEquity: 0.2}, nil
}

func (stubFundamentals) Statements(ctx context.Context, symbol string) (*models.Statements, error) {
	return &models.Statements{}, nil
}

func (stubFundamentals) Indicators(ctx context.Context, symbol string) (*models.IndicatorReadings, error) {
	return &models.IndicatorReadings{RSI: 55, HasRSI: true}, nil
}

type stubSentiment struct{}

func (stubSentiment) Recommendation(ctx context.Context, symbol string) (*models.Recommendation, error) {
	return &models.Recommendation{Buy: 10}, nil
}

func (stubSentiment) Earnings(ctx context.Context, symbol string) (*models.EarningsSurprise, error) {
	return &models.EarningsSurprise{}, nil
}

func (stubSentiment) InsiderSentiment(ctx context.Context, symbol string) (*models.InsiderSentiment, error) {
	return &models.InsiderSentiment{}, nil
}

type stubCrypto struct{}

func (stubCrypto) Snapshot(ctx context.Context, symbol string) (*models.CryptoSnapshot, error) {
	return &models.CryptoSnapshot{Symbol: symbol}, nil
}

func (stubCrypto) Candles(ctx context.Context, symbol string, days int) ([]models.Candle, error) {
	return stubMarket{}.Candles(ctx, symbol, days)
}

type stubSearcher struct{}

func (stubSearcher) Search(ctx context.Context, query, topic string, maxResults int) ([]models.SearchResult, error) {
	return nil, nil
}

type memStore struct {
	analyses []models.Analysis
}

func (s *memStore) SaveAnalysis(ctx context.Context, a *models.Analysis) error {
	s.analyses = append(s.analyses, *a)
	return nil
}

func (s *memStore) SaveChatMessage(ctx context.Context, m *models.ChatMessage) error { return nil }

func (s *memStore) RecentAnalyses(ctx context.Context, ticker string, limit int) ([]models.Analysis, error) {
	return s.analyses, nil
}

func (s *memStore) LatestAnalysis(ctx context.Context, ticker string) (*models.Analysis, error) {
	if len(s.analyses) == 0 {
		return nil, nil
	}
	return &s.analyses[len(s.analyses)-1], nil
}

type memSessions struct {
	data map[string]*models.SessionContext
}

func (s *memSessions) Put(ctx context.Context, id string, sc *models.SessionContext) error {
	s.data[id] = sc
	return nil
}

func (s *memSessions) Get(ctx context.Context, id string) (*models.SessionContext, error) {
	return s.data[id], nil
}

type memPublisher struct{}

func (memPublisher) PublishAnalysisCompleted(ctx context.Context, ev *models.AnalysisEvent) error {
	return nil
}

func newTestHandler(t *testing.T) (*ChatHandler, *memStore) {
	t.Helper()
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	rec := metrics.New()
	team := agents.NewTeam(stubLLM{}, log, rec)
	store := &memStore{}
	sessions := &memSessions{data: make(map[string]*models.SessionContext)}

	orch := usecase.NewOrchestrator(usecase.OrchestratorDeps{
		Team:         team,
		Market:       stubMarket{},
		Fundamentals: stubFundamentals{},
		Sentiment:    stubSentiment{},
		Crypto:       stubCrypto{},
		Search:       stubSearcher{},
		Store:        store,
		Sessions:     sessions,
		Publisher:    memPublisher{},
		Recorder:     rec,
		Logger:       log,
	})
	chat := usecase.NewChatService(orch, sessions, store, team, log)
	return NewChatHandler(chat, log), store
}

func doRequest(h *ChatHandler, method, target, body string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestModels(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doRequest(h, http.MethodGet, "/v1/models", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var list models.ModelList
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if list.Object != "list" || len(list.Data) != 2 {
		t.Fatalf("list = %+v", list)
	}
	if list.Data[0].ID != "stock-analyst" || list.Data[1].ID != "stock-analyst-fast" {
		t.Errorf("model ids = %s, %s", list.Data[0].ID, list.Data[1].ID)
	}
}

func TestRoot(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doRequest(h, http.MethodGet, "/", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "OpenAI Compatible") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestCompletionsNoUserMessage(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doRequest(h, http.MethodPost, "/v1/chat/completions",
		`{"model":"stock-analyst","messages":[{"role":"system","content":"hi"}]}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No user message found") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestCompletionsNonStreaming(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doRequest(h, http.MethodPost, "/v1/chat/completions",
		`{"model":"stock-analyst","messages":[{"role":"user","content":"สวัสดี"}]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp models.ChatCompletionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Object != "chat.completion" {
		t.Errorf("object = %s", resp.Object)
	}
	if !strings.HasPrefix(resp.ID, "chatcmpl-") {
		t.Errorf("id = %s", resp.ID)
	}
	if len(resp.Choices) != 1 || resp.Choices[0].FinishReason != "stop" {
		t.Fatalf("choices = %+v", resp.Choices)
	}
	if resp.Choices[0].Message.Content != usecase.NoTickerMessage {
		t.Errorf("content = %q", resp.Choices[0].Message.Content)
	}
	if resp.Usage.TotalTokens != resp.Usage.PromptTokens+resp.Usage.CompletionTokens {
		t.Errorf("usage = %+v", resp.Usage)
	}
}

func TestCompletionsStreaming(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doRequest(h, http.MethodPost, "/v1/chat/completions",
		`{"model":"stock-analyst","stream":true,"messages":[{"role":"user","content":"วิเคราะห์ AAPL"}]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("content type = %s", ct)
	}

	body := rec.Body.String()
	if !strings.HasSuffix(body, "data: [DONE]\n\n") {
		t.Fatal("stream missing [DONE] terminator")
	}

	var sawContent, sawFinish bool
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: ") || line == "data: [DONE]" {
			continue
		}
		var chunk models.ChatCompletionChunk
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &chunk); err != nil {
			t.Fatalf("bad chunk %q: %v", line, err)
		}
		if chunk.Object != "chat.completion.chunk" {
			t.Fatalf("chunk object = %s", chunk.Object)
		}
		if len(chunk.Choices) == 1 && chunk.Choices[0].Delta.Content != "" {
			sawContent = true
		}
		if len(chunk.Choices) == 1 && chunk.Choices[0].FinishReason != nil && *chunk.Choices[0].FinishReason == "stop" {
			sawFinish = true
		}
	}
	if !sawContent || !sawFinish {
		t.Errorf("sawContent=%v sawFinish=%v", sawContent, sawFinish)
	}
	if !strings.Contains(body, "Phase 1") {
		t.Errorf("stream missing progress frames")
	}
}

func TestCompletionsRateLimited(t *testing.T) {
	h, _ := newTestHandler(t)
	body := `{"model":"stock-analyst","messages":[{"role":"user","content":"สวัสดี"}]}`

	var last *httptest.ResponseRecorder
	for i := 0; i < 4; i++ {
		last = doRequest(h, http.MethodPost, "/v1/chat/completions", body)
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", last.Code)
	}
}

func TestCompletionsDefaultModel(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doRequest(h, http.MethodPost, "/v1/chat/completions",
		`{"messages":[{"role":"user","content":"hello"}]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp models.ChatCompletionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Model != "stock-analyst" {
		t.Errorf("model = %s", resp.Model)
	}
}
