// Package agents implements the analyst, researcher, debate, and manager
// agents of the analysis pipeline. Every agent renders a prompt from the
// shared analysis state, calls the chat model, and extracts a structured
// result from the generated Thai report.
//
// Agents are fail-soft: an LLM failure degrades into placeholder report
// text and default signals rather than failing the pipeline.
package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"StockSage/internal/domain/models"
	"StockSage/internal/domain/repository"
	applogger "StockSage/pkg/logger"
	"StockSage/pkg/metrics"
)

const errorResponse = "Error generating response."

type base struct {
	name string
	llm  repository.ChatModel
	log  *applogger.Logger
	rec  *metrics.Recorder
}

// generate calls the chat model and records the call. On failure it logs
// the error and returns placeholder text so the pipeline can continue.
func (b *base) generate(ctx context.Context, system, user string) string {
	start := time.Now()
	out, err := b.llm.Generate(ctx, system, user)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		b.rec.RecordLLMCall(b.name, "error", elapsed)
		b.log.Error("llm call failed",
			applogger.String("agent", b.name),
			applogger.Error(err),
		)
		return errorResponse
	}

	b.rec.RecordLLMCall(b.name, "ok", elapsed)
	return out
}

// Team bundles every agent of the pipeline around one chat model.
type Team struct {
	Market       *MarketAnalyst
	Fundamentals *FundamentalsAnalyst
	News         *NewsAnalyst
	Social       *SocialAnalyst
	Risk         *RiskAnalyst
	Crypto       *CryptoAnalyst

	Bull      *BullResearcher
	Bear      *BearResearcher
	Moderator *DebateModerator

	Risky        *RiskyDebator
	Conservative *ConservativeDebator
	NeutralRisk  *NeutralDebator
	Judge        *RiskJudge

	Portfolio *PortfolioManager
	Assistant *ChatAssistant
}

// NewTeam builds the full agent roster sharing one chat model, logger, and
// metrics recorder.
func NewTeam(llm repository.ChatModel, log *applogger.Logger, rec *metrics.Recorder) *Team {
	mk := func(name string) base {
		return base{name: name, llm: llm, log: log, rec: rec}
	}
	return &Team{
		Market:       &MarketAnalyst{mk("MarketAnalyst")},
		Fundamentals: &FundamentalsAnalyst{mk("FundamentalsAnalyst")},
		News:         &NewsAnalyst{mk("NewsAnalyst")},
		Social:       &SocialAnalyst{mk("SocialAnalyst")},
		Risk:         &RiskAnalyst{mk("RiskAnalyst")},
		Crypto:       &CryptoAnalyst{mk("CryptoAnalyst")},
		Bull:         &BullResearcher{mk("BullResearcher")},
		Bear:         &BearResearcher{mk("BearResearcher")},
		Moderator:    &DebateModerator{mk("DebateModerator")},
		Risky:        &RiskyDebator{mk("RiskyDebator")},
		Conservative: &ConservativeDebator{mk("ConservativeDebator")},
		NeutralRisk:  &NeutralDebator{mk("NeutralDebator")},
		Judge:        &RiskJudge{mk("RiskJudge")},
		Portfolio:    &PortfolioManager{mk("PortfolioManager")},
		Assistant:    &ChatAssistant{mk("ChatAssistant")},
	}
}

// truncateRunes shortens prompt excerpts without splitting multi-byte
// characters.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func sectionOf(r *models.AgentReport, def string) string {
	if r == nil {
		return def
	}
	return orDefault(r.Section, def)
}

func argumentOf(r *models.AgentReport) string {
	if r == nil {
		return ""
	}
	return r.Argument
}

// renderCandleTable formats the last n daily bars for a prompt.
func renderCandleTable(candles []models.Candle, n int) string {
	if len(candles) == 0 {
		return "No data available"
	}
	if len(candles) > n {
		candles = candles[len(candles)-n:]
	}

	var sb strings.Builder
	sb.WriteString("Date        Open       Close      Volume\n")
	for _, c := range candles {
		date := time.Unix(c.Timestamp, 0).UTC().Format("2006-01-02")
		fmt.Fprintf(&sb, "%s  %-9.2f  %-9.2f  %.0f\n", date, c.Open, c.Close, c.Volume)
	}
	return sb.String()
}

// renderFinancials formats key metrics the way analyst prompts expect them.
func renderFinancials(f *models.Financials) string {
	if f == nil {
		return "No data available"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Market Cap: %s\n", models.FormatMoney(f.MarketCap))
	fmt.Fprintf(&sb, "Revenue: %s\n", models.FormatMoney(f.Revenue))
	fmt.Fprintf(&sb, "P/E Ratio: %s\n", numOrNA(f.PERatio))
	fmt.Fprintf(&sb, "Forward P/E: %s\n", numOrNA(f.ForwardPE))
	fmt.Fprintf(&sb, "EPS: %s\n", numOrNA(f.EPS))
	fmt.Fprintf(&sb, "Profit Margin: %s\n", pctOrNA(f.ProfitMargin))
	fmt.Fprintf(&sb, "Operating Margin: %s\n", pctOrNA(f.OperatingMargin))
	fmt.Fprintf(&sb, "ROE: %s\n", pctOrNA(f.ReturnOnEquity))
	fmt.Fprintf(&sb, "Debt to Equity: %s\n", numOrNA(f.DebtToEquity))
	fmt.Fprintf(&sb, "Current Price: %s\n", numOrNA(f.CurrentPrice))
	fmt.Fprintf(&sb, "Target Price: %s\n", numOrNA(f.TargetMeanPrice))
	fmt.Fprintf(&sb, "Recommendation: %s\n", orDefault(f.Recommendation, "N/A"))
	return sb.String()
}

func renderIndicators(ind *models.IndicatorReadings) string {
	if ind == nil || (!ind.HasRSI && !ind.HasMACD && !ind.HasSMA) {
		return "No data available"
	}

	var sb strings.Builder
	if ind.HasRSI {
		zone := "Neutral"
		switch {
		case ind.RSI < 30:
			zone = "Oversold"
		case ind.RSI > 70:
			zone = "Overbought"
		}
		fmt.Fprintf(&sb, "RSI (14): %.1f (%s)\n", ind.RSI, zone)
	}
	if ind.HasMACD {
		trend := "Bearish"
		if ind.MACDHistogram > 0 {
			trend = "Bullish"
		}
		fmt.Fprintf(&sb, "MACD: %.2f | Signal: %.2f (%s)\n", ind.MACD, ind.MACDSignal, trend)
	}
	if ind.HasSMA {
		fmt.Fprintf(&sb, "SMA 50: $%.2f\n", ind.SMA50)
	}
	return sb.String()
}

func numOrNA(v float64) string {
	if v == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", v)
}

func pctOrNA(v float64) string {
	if v == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", v*100)
}
