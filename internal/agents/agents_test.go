package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"StockSage/internal/domain/models"
	applogger "StockSage/pkg/logger"
	"StockSage/pkg/metrics"
)

type fakeLLM struct {
	response string
	err      error
	lastSys  string
	lastUser string
}

func (f *fakeLLM) Generate(ctx context.Context, system, user string) (string, error) {
	f.lastSys = system
	f.lastUser = user
	return f.response, f.err
}

func (f *fakeLLM) Model() string { return "fake" }

func newTestTeam(llm *fakeLLM) *Team {
	log, err := applogger.New(&applogger.Config{Level: "error"})
	if err != nil {
		panic(err)
	}
	return NewTeam(llm, log, metrics.New())
}

func stockState() *models.AnalysisState {
	return &models.AnalysisState{
		Ticker: "AAPL",
		Flow:   models.FlowStock,
		Candles: []models.Candle{
			{Timestamp: 1700000000, Open: 188, Close: 189, Volume: 1000},
			{Timestamp: 1700086400, Open: 189, Close: 190, Volume: 1100},
		},
		Financials: &models.Financials{MarketCap: 2.9e12, PERatio: 29.7},
	}
}

func TestMarketAnalystExtractsBuySignal(t *testing.T) {
	llm := &fakeLLM{response: "## 1. MARKET ANALYST REPORT\nแนวโน้มดี สัญญาณ: BUY"}
	team := newTestTeam(llm)

	report := team.Market.Analyze(context.Background(), stockState())
	if report.Signal != models.SignalBullish {
		t.Fatalf("signal = %v", report.Signal)
	}
	if !strings.Contains(llm.lastUser, "AAPL") {
		t.Fatal("prompt missing ticker")
	}
	if !strings.Contains(llm.lastUser, "Market Cap:") {
		t.Fatal("prompt missing financials block")
	}
}

func TestMarketAnalystIncludesIndicators(t *testing.T) {
	llm := &fakeLLM{response: "## 1. MARKET ANALYST REPORT\nสัญญาณ: HOLD"}
	team := newTestTeam(llm)

	st := stockState()
	st.Indicators = &models.IndicatorReadings{
		RSI: 75.3, HasRSI: true,
		MACD: 1.25, MACDSignal: 1.10, MACDHistogram: 0.15, HasMACD: true,
		SMA50: 182.4, HasSMA: true,
	}
	team.Market.Analyze(context.Background(), st)

	if !strings.Contains(llm.lastUser, "RSI (14): 75.3 (Overbought)") {
		t.Fatalf("prompt missing RSI line:\n%s", llm.lastUser)
	}
	if !strings.Contains(llm.lastUser, "MACD: 1.25 | Signal: 1.10 (Bullish)") {
		t.Fatal("prompt missing MACD line")
	}
	if !strings.Contains(llm.lastUser, "SMA 50: $182.40") {
		t.Fatal("prompt missing SMA line")
	}
}

func TestMarketAnalystNoIndicators(t *testing.T) {
	llm := &fakeLLM{response: "## 1. MARKET ANALYST REPORT\nสัญญาณ: HOLD"}
	team := newTestTeam(llm)

	team.Market.Analyze(context.Background(), stockState())
	if !strings.Contains(llm.lastUser, "Technical Indicators (Alpha Vantage):**\nNo data available") {
		t.Fatal("prompt must mark missing indicators as unavailable")
	}
}

func TestAnalystFailSoft(t *testing.T) {
	llm := &fakeLLM{err: errors.New("connection refused")}
	team := newTestTeam(llm)

	report := team.Fundamentals.Analyze(context.Background(), stockState())
	if report.Section != errorResponse {
		t.Fatalf("section = %q, want placeholder", report.Section)
	}
	if report.Signal != models.SignalNeutral {
		t.Fatalf("signal = %v, want neutral on failure", report.Signal)
	}
}

func TestFundamentalsAnalystCryptoPrompt(t *testing.T) {
	llm := &fakeLLM{response: "## 2. FUNDAMENTALS ANALYST REPORT\noutlook: BULLISH"}
	team := newTestTeam(llm)

	st := &models.AnalysisState{
		Ticker: "BTC-USD",
		Flow:   models.FlowCrypto,
		Crypto: &models.CryptoSnapshot{Name: "Bitcoin USD", CurrentPrice: 64000},
	}
	report := team.Fundamentals.Analyze(context.Background(), st)
	if report.Signal != models.SignalBullish {
		t.Fatalf("signal = %v", report.Signal)
	}
	if strings.Contains(llm.lastUser, "Income Statement") {
		t.Fatal("crypto prompt must not ask for statements")
	}
	if !strings.Contains(llm.lastSys, "Cryptocurrency Analyst") {
		t.Fatal("crypto flow must use the crypto system prompt")
	}
}

func TestBullBearConfidenceDefaults(t *testing.T) {
	llm := &fakeLLM{response: "thesis without an explicit score"}
	team := newTestTeam(llm)
	st := stockState()

	bull := team.Bull.Analyze(context.Background(), st)
	if bull.Confidence != 0.7 {
		t.Fatalf("bull default confidence = %v", bull.Confidence)
	}
	bear := team.Bear.Analyze(context.Background(), st)
	if bear.Confidence != 0.6 {
		t.Fatalf("bear default confidence = %v", bear.Confidence)
	}
}

func TestModeratorFallsBackToConfidenceGap(t *testing.T) {
	llm := &fakeLLM{response: "สรุปโดยไม่ระบุผู้ชนะ"}
	team := newTestTeam(llm)

	st := stockState()
	st.Bull = &models.AgentReport{Confidence: 0.9, Section: "bull case"}
	st.Bear = &models.AgentReport{Confidence: 0.5, Section: "bear case"}

	outcome := team.Moderator.Moderate(context.Background(), st)
	if outcome.Verdict != models.SignalBullish {
		t.Fatalf("verdict = %v, want bull via confidence gap", outcome.Verdict)
	}
	if outcome.BullConfidence != 0.9 || outcome.BearConfidence != 0.5 {
		t.Fatalf("confidences = %v/%v", outcome.BullConfidence, outcome.BearConfidence)
	}
}

func TestRiskJudgeFallbackOnShortResponse(t *testing.T) {
	llm := &fakeLLM{response: "สั้นเกินไป"}
	team := newTestTeam(llm)

	st := stockState()
	st.Risky = &models.AgentReport{Argument: "เสี่ยงเลย"}
	st.NeutralRisk = &models.AgentReport{Argument: "สายกลาง"}
	st.Conservative = &models.AgentReport{Argument: "ระวังก่อน"}

	j := team.Judge.Judge(context.Background(), st)
	if j.Decision != models.DecisionHold {
		t.Fatalf("decision = %v, want HOLD fallback", j.Decision)
	}
	if j.WinningSide != "NEUTRAL" {
		t.Fatalf("winning side = %q", j.WinningSide)
	}
	if !strings.Contains(j.Verdict, "การตัดสินอัตโนมัติ") {
		t.Fatal("fallback verdict text missing")
	}
}

func TestRiskJudgeDecisiveBuy(t *testing.T) {
	llm := &fakeLLM{response: strings.Repeat("วิเคราะห์อย่างละเอียด ", 10) +
		"\nฝ่ายที่มีเหตุผลแข็งแกร่งที่สุด: ฝ่ายเสี่ยงสูง\nคำตัดสิน: BUY"}
	team := newTestTeam(llm)

	j := team.Judge.Judge(context.Background(), stockState())
	if j.Decision != models.DecisionBuy {
		t.Fatalf("decision = %v", j.Decision)
	}
	if j.WinningSide != "RISKY" {
		t.Fatalf("winning side = %q", j.WinningSide)
	}
}

func TestPortfolioManagerAction(t *testing.T) {
	llm := &fakeLLM{response: "## 💼 PORTFOLIO MANAGER DECISION\nACTION: BUY เพราะปัจจัยบวก"}
	team := newTestTeam(llm)

	decision, section := team.Portfolio.Decide(context.Background(), stockState())
	if decision != models.DecisionBuy {
		t.Fatalf("decision = %v", decision)
	}
	if !strings.Contains(section, "PORTFOLIO MANAGER DECISION") {
		t.Fatal("section missing report text")
	}
}
