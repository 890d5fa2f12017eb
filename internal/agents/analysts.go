package agents

import (
	"context"
	"fmt"
	"math"
	"net/url"

	"StockSage/internal/domain/models"
)

// MarketAnalyst writes the technical and price-action report.
type MarketAnalyst struct {
	base
}

const marketSystemPrompt = `You are a professional financial market analyst.
Your job is to analyze the provided stock data and write a detailed technical and fundamental analysis report.
**IMPORTANT: Write the entire report in Thai language.**
Use Markdown formatting. Include a table for key financial metrics.
Conclude with a clear signal: BUY, SELL, or HOLD.`

func (a *MarketAnalyst) Analyze(ctx context.Context, st *models.AnalysisState) *models.AgentReport {
	user := fmt.Sprintf(`Analyze the following data for %s:

**Recent Price History (Last 5 Days):**
%s

**Key Financials:**
%s

**Technical Indicators (Alpha Vantage):**
%s

Please provide:
1. A table of the key financial metrics.
2. A brief analysis of the recent price trend and the technical indicators.
3. An evaluation of the company's fundamental health based on the metrics.
4. A final signal (BUY/SELL/HOLD) with reasoning.

Format the output as a clean Markdown section starting with '## 1. MARKET ANALYST REPORT'.
**Remember: The output must be in Thai.**`,
		st.Ticker, renderCandleTable(st.Candles, 5), renderFinancials(st.Financials), renderIndicators(st.Indicators))

	report := a.generate(ctx, marketSystemPrompt, user)

	signal := models.SignalNeutral
	switch ExtractDecision(report) {
	case models.DecisionBuy:
		signal = models.SignalBullish
	case models.DecisionSell:
		signal = models.SignalBearish
	}

	return &models.AgentReport{
		Agent:      a.name,
		Signal:     signal,
		Confidence: ExtractConfidence(report, 0.5),
		Section:    report,
	}
}

// FundamentalsAnalyst writes the financial-statement report, switching to a
// crypto-metrics prompt for crypto assets.
type FundamentalsAnalyst struct {
	base
}

const fundamentalsSystemPrompt = `You are a professional Fundamental Analyst.
Your job is to analyze the company's financial statements and key metrics.
Focus on profitability, growth, health (debt/liquidity), and valuation.
**IMPORTANT: Write the entire report in Thai language.**
Use Markdown formatting with tables.
Conclude with a fundamental outlook: BULLISH, BEARISH, or NEUTRAL.`

const cryptoFundamentalsSystemPrompt = `You are a professional Cryptocurrency Analyst.
Your job is to analyze crypto assets based on market data.
**IMPORTANT: Write the entire report in Thai language.**
Use Markdown formatting with tables.
Conclude with an outlook: BULLISH, BEARISH, or NEUTRAL.`

func (a *FundamentalsAnalyst) Analyze(ctx context.Context, st *models.AnalysisState) *models.AgentReport {
	var system, user string

	if st.Flow == models.FlowCrypto {
		system = cryptoFundamentalsSystemPrompt
		user = fmt.Sprintf(`Analyze the following cryptocurrency data for %s:

**Key Metrics:**
%s

Please provide:
1. An analysis of Market Cap and its significance.
2. An analysis of recent price trends and volatility.
3. A discussion of adoption and network effects (if applicable).
4. A final verdict (BULLISH/BEARISH/NEUTRAL) with reasoning.

Format the output as a clean Markdown section starting with '## 2. FUNDAMENTALS ANALYST REPORT'.
**Remember: The output must be in Thai.**`,
			st.Ticker, renderCryptoMetrics(st.Crypto))
	} else {
		warning := ""
		if st.Financials == nil || st.Financials.MarketCap == 0 {
			warning = "\n**WARNING: Key financial data is missing. The ticker symbol might be incorrect.**\n"
		}
		stmts := st.Statements
		if stmts == nil {
			stmts = &models.Statements{IncomeStatement: "N/A", BalanceSheet: "N/A", CashFlow: "N/A"}
		}

		system = fundamentalsSystemPrompt
		user = fmt.Sprintf(`Analyze the following financial data for %s:
%s
**Key Metrics:**
%s

**Income Statement (Recent):**
%s

**Balance Sheet (Recent):**
%s

**Cash Flow (Recent):**
%s

Please provide:
1. An analysis of Profitability (Margins, ROE).
2. An analysis of Financial Health (Debt, Liquidity).
3. An analysis of Valuation (PE, PEG vs Peers if implied).
4. A final fundamental verdict (BULLISH/BEARISH/NEUTRAL) with reasoning.

Format the output as a clean Markdown section starting with '## 2. FUNDAMENTALS ANALYST REPORT'.
**Remember: The output must be in Thai.**`,
			st.Ticker, warning, renderFinancials(st.Financials),
			stmts.IncomeStatement, stmts.BalanceSheet, stmts.CashFlow)
	}

	report := a.generate(ctx, system, user)

	return &models.AgentReport{
		Agent:      a.name,
		Signal:     ExtractSignal(report),
		Confidence: ExtractConfidence(report, 0.5),
		Section:    report,
	}
}

func renderCryptoMetrics(c *models.CryptoSnapshot) string {
	if c == nil {
		return "No data available"
	}
	return fmt.Sprintf(`Name: %s
Current Price: $%.2f
Market Cap: %s
Volume 24h: %s
52-Week High: $%.2f
52-Week Low: $%.2f
Circulating Supply: %.0f
24h Change: %.2f%%`,
		c.Name, c.CurrentPrice, models.FormatMoney(c.MarketCap),
		models.FormatMoney(c.Volume24h), c.Week52High, c.Week52Low,
		c.CirculatingSupply, c.ChangePercent24h)
}

// NewsAnalyst writes the news sentiment report from web search results with
// provider headlines as fallback.
type NewsAnalyst struct {
	base
}

const newsSystemPrompt = `You are a professional news analyst.
Your job is to read the provided news headlines and write a sentiment analysis report.
**IMPORTANT: Write the entire report in Thai language.**
Use Markdown formatting.
Conclude with a clear sentiment score: POSITIVE, NEGATIVE, or NEUTRAL.`

func (a *NewsAnalyst) Analyze(ctx context.Context, st *models.AnalysisState) *models.AgentReport {
	user := fmt.Sprintf(`Analyze the following news for %s:

%s

Please provide:
1. A summary of the key news topics.
2. An analysis of the overall market sentiment towards the company.
3. A final sentiment verdict (POSITIVE/NEGATIVE/NEUTRAL).

**CRITICAL:** Cite the source with a clickable link for every claim.
Format: [Publisher Name](URL)

Format the output as a clean Markdown section starting with '## 3. NEWS ANALYST REPORT'.
**Remember: The output must be in Thai.**`,
		st.Ticker, renderNewsTable(st))

	report := a.generate(ctx, newsSystemPrompt, user)

	return &models.AgentReport{
		Agent:      a.name,
		Signal:     ExtractSentiment(report),
		Confidence: ExtractConfidence(report, 0.5),
		Section:    report,
	}
}

func renderNewsTable(st *models.AnalysisState) string {
	type row struct{ title, publisher, link string }
	var rows []row

	for _, r := range st.Search {
		publisher := splitHost(r.URL)
		if publisher == "" {
			publisher = r.URL
		}
		rows = append(rows, row{r.Title, publisher, r.URL})
	}
	if len(rows) == 0 {
		for _, n := range st.News {
			rows = append(rows, row{n.Title, n.Publisher, n.Link})
		}
	}
	if len(rows) == 0 {
		return "No recent news found."
	}

	out := "| # | ชื่อข่าว | ผู้เผยแพร่ | ลิงก์ |\n|---|---------|----------|------|\n"
	for i, r := range rows {
		if i >= 5 {
			break
		}
		title := orDefault(r.title, "No title")
		if len([]rune(title)) > 80 {
			title = truncateRunes(title, 80) + "..."
		}
		out += fmt.Sprintf("| %d | %s | %s | %s |\n",
			i+1, title, orDefault(r.publisher, "Unknown"), orDefault(r.link, "#"))
	}
	return out
}

func splitHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Host
}

// SocialAnalyst gauges retail sentiment from social media search results.
type SocialAnalyst struct {
	base
}

const socialSystemPrompt = `You are a Social Media Analyst.
Your job is to gauge the public sentiment and 'buzz' around a stock based on social media discussions.
**IMPORTANT: Write the entire report in Thai language.**
Use Markdown formatting.
Conclude with a social sentiment score: BULLISH, BEARISH, or NEUTRAL.`

// AnalyzeSocial expects st.Search to hold social discussion hits collected by
// the orchestrator; provider headlines stand in when search is unavailable.
func (a *SocialAnalyst) Analyze(ctx context.Context, st *models.AnalysisState, socialHits []models.SearchResult) *models.AgentReport {
	var lines []string
	for _, hit := range socialHits {
		lines = append(lines, fmt.Sprintf("%s (%s)", hit.Title, hit.URL))
	}
	if len(lines) == 0 {
		for i, n := range st.News {
			if i >= 5 {
				break
			}
			lines = append(lines, "Simulated (News): "+n.Title)
		}
	}

	summary := "No social signals found."
	if len(lines) > 0 {
		summary = ""
		for _, l := range lines {
			summary += l + "\n"
		}
	}

	user := fmt.Sprintf(`Analyze the social media sentiment for %s based on these discussions:

%s

Please provide:
1. A summary of what retail investors are discussing.
2. An analysis of the 'Hype' vs 'Fear' levels.
3. A final social sentiment verdict (BULLISH/BEARISH/NEUTRAL).

Format the output as a clean Markdown section starting with '## 4. SOCIAL ANALYST REPORT'.
**Remember: The output must be in Thai.**`,
		st.Ticker, summary)

	report := a.generate(ctx, socialSystemPrompt, user)

	return &models.AgentReport{
		Agent:      a.name,
		Signal:     ExtractSignal(report),
		Confidence: ExtractConfidence(report, 0.5),
		Section:    report,
	}
}

// RiskAnalyst assesses the risk profile, including realized volatility.
type RiskAnalyst struct {
	base
}

const riskSystemPrompt = `You are a Risk Management Specialist.
Your job is to assess the risks associated with investing in a specific stock.
Consider volatility, market conditions, and company-specific risks.
**IMPORTANT: Write the entire report in Thai language.**
Use Markdown formatting.
Conclude with a risk level: LOW, MEDIUM, or HIGH.`

func (a *RiskAnalyst) Analyze(ctx context.Context, st *models.AnalysisState) *models.AgentReport {
	user := fmt.Sprintf(`Analyze the risk profile for %s:

**Annualized Volatility (Estimated):** %.2f%%

**Key Financials:**
%s

Please provide:
1. An analysis of Market Risk (Beta, Volatility).
2. An analysis of Company Risk (Debt, Earnings Stability).
3. A final risk assessment (LOW/MEDIUM/HIGH) with mitigation strategies.

Format the output as a clean Markdown section starting with '## 5. RISK ANALYST REPORT'.
**Remember: The output must be in Thai.**`,
		st.Ticker, AnnualizedVolatility(st.Candles)*100, renderFinancials(st.Financials))

	report := a.generate(ctx, riskSystemPrompt, user)

	signal := models.SignalNeutral
	switch ExtractRiskLevel(report) {
	case RiskLow:
		signal = models.SignalBullish
	case RiskHigh:
		signal = models.SignalBearish
	}

	return &models.AgentReport{
		Agent:      a.name,
		Signal:     signal,
		Confidence: ExtractConfidence(report, 0.5),
		Section:    report,
	}
}

// AnnualizedVolatility estimates yearly volatility from the standard
// deviation of daily returns, scaled by sqrt of 252 trading days.
func AnnualizedVolatility(candles []models.Candle) float64 {
	if len(candles) < 3 {
		return 0
	}

	returns := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		if prev == 0 {
			continue
		}
		returns = append(returns, (candles[i].Close-prev)/prev)
	}
	if len(returns) < 2 {
		return 0
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)

	return math.Sqrt(variance) * math.Sqrt(252)
}

// CryptoAnalyst writes the crypto market report used in place of the market
// analyst on the crypto flow.
type CryptoAnalyst struct {
	base
}

const cryptoSystemPrompt = `You are a Cryptocurrency Analyst specializing in digital assets.
Your analysis focuses on:
1. Price action and volatility
2. Market cap and trading volume
3. Market sentiment and trends
4. Technical patterns
5. Risk assessment for crypto assets

**IMPORTANT:**
- Crypto is highly volatile - always mention risks
- DO NOT use stock metrics like P/E, EPS, Revenue
- Write entirely in Thai language
- Be balanced - mention both opportunities and risks`

func (a *CryptoAnalyst) Analyze(ctx context.Context, st *models.AnalysisState) *models.AgentReport {
	snap := st.Crypto
	name := st.Ticker
	var price, high52, low52, supply float64
	marketCap, volume := "N/A", "N/A"
	if snap != nil {
		name = orDefault(snap.Name, st.Ticker)
		price = snap.CurrentPrice
		high52 = snap.Week52High
		low52 = snap.Week52Low
		supply = snap.CirculatingSupply
		marketCap = models.FormatMoney(snap.MarketCap)
		volume = models.FormatMoney(snap.Volume24h)
	}

	user := fmt.Sprintf(`Analyze this cryptocurrency: %s

=== ข้อมูลตลาด ===
ชื่อ: %s
ราคาปัจจุบัน: $%.2f
Market Cap: %s
Volume 24h: %s
52-Week High: $%.2f
52-Week Low: $%.2f
Circulating Supply: %.0f

=== ราคา 5 วันล่าสุด ===
%s

กรุณาวิเคราะห์โดยครอบคลุม:
1. **สถานะตลาดปัจจุบัน**: ราคาอยู่ในช่วงไหน (ใกล้ ATH? ใกล้ bottom?)
2. **Volume และ Liquidity**: การซื้อขายคล่องแค่ไหน
3. **แนวโน้มระยะสั้น**: กราฟบอกอะไร
4. **ความเสี่ยงสำคัญ**: ความผันผวน, regulatory risks, etc.
5. **สัญญาณ**: BULLISH / BEARISH / NEUTRAL

Format เป็น Markdown section เริ่มด้วย '## 1. รายงานวิเคราะห์ Cryptocurrency'`,
		st.Ticker, name, price, marketCap, volume, high52, low52, supply,
		renderCandleTable(st.Candles, 5))

	report := a.generate(ctx, cryptoSystemPrompt, user)

	return &models.AgentReport{
		Agent:      a.name,
		Signal:     ExtractSignal(report),
		Confidence: ExtractConfidence(report, 0.5),
		Section:    report,
	}
}
