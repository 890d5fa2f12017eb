package agents

import (
	"context"
	"fmt"

	"StockSage/internal/domain/models"
)

// BullResearcher argues the bullish case from the analyst reports.
type BullResearcher struct {
	base
}

const bullSystemPrompt = `You are a Bull Analyst advocating for investing in this stock.
Your task is to build a strong, evidence-based bullish case.

**Style Guidelines:**
- Write in a conversational, persuasive tone
- Focus on storytelling with data support
- Don't just list points - explain WHY they matter
- Be confident but not arrogant
- Write entirely in Thai
- Keep it concise but impactful`

func (a *BullResearcher) Analyze(ctx context.Context, st *models.AnalysisState) *models.AgentReport {
	user := fmt.Sprintf(`Build the STRONGEST BULLISH CASE for %s:

=== AVAILABLE DATA ===
Market Analysis:
%s

Fundamentals:
%s

News:
%s

=== YOUR BULLISH ARGUMENT ===
Write a compelling bullish thesis covering:

1. **ข้อมูลสนับสนุนขาขึ้น (Bullish Arguments)**
   Highlight growth potential, competitive advantages, and positive indicators.
   Cite specific data from the reports.

2. **ตัวเร่งการเติบโต (Growth Catalysts)**
   What upcoming events or trends could drive the stock up?

3. **การประเมินมูลค่า (Valuation Assessment)**
   Why might the stock be undervalued or fairly valued for its growth?

4. **สรุปและคำแนะนำ (Summary)**
   Wrap up your bullish thesis in 2-3 persuasive sentences.

5. **ความเชื่อมั่น (Confidence Score)**
   End with: "Confidence: X.XX" (0.0 to 1.0)

Format as Markdown starting with '## 🐂 BULL RESEARCHER REPORT'`,
		st.Ticker,
		sectionOf(st.Market, "No market data available"),
		sectionOf(st.Fundamentals, "No fundamentals data available"),
		sectionOf(st.NewsReport, "No news data available"))

	report := a.generate(ctx, bullSystemPrompt, user)

	return &models.AgentReport{
		Agent:      a.name,
		Signal:     models.SignalBullish,
		Confidence: ExtractConfidence(report, 0.7),
		Section:    report,
	}
}

// BearResearcher argues the bearish case, including the risk report.
type BearResearcher struct {
	base
}

const bearSystemPrompt = `You are a Bear Analyst making the case AGAINST investing in this stock.
Your task is to present well-reasoned bearish arguments.

**Style Guidelines:**
- Write in a critical but fair tone
- Focus on real risks, not fear-mongering
- Explain WHY certain factors are concerning
- Be specific with data citations
- Write entirely in Thai
- Be concise but thorough`

func (a *BearResearcher) Analyze(ctx context.Context, st *models.AnalysisState) *models.AgentReport {
	user := fmt.Sprintf(`Build the STRONGEST BEARISH CASE for %s:

=== AVAILABLE DATA ===
Market Analysis:
%s

Fundamentals:
%s

News:
%s

Risk Analysis:
%s

=== YOUR BEARISH ARGUMENT ===
Write a critical bearish thesis covering:

1. **ข้อมูลสนับสนุนขาลง (Bearish Arguments)**
   Highlight risks, challenges, and negative indicators.
   Cite specific data from the reports.

2. **ความเสี่ยงที่สำคัญ (Key Risks)**
   What major factors could hurt this stock?

3. **การประเมินมูลค่า (Valuation Concerns)**
   Why might the stock be overvalued?

4. **Red Flags และสัญญาณเตือน (Warning Signs)**
   Point out any concerning patterns or risks.

5. **สรุปและคำแนะนำ (Summary)**
   Wrap up your bearish thesis in 2-3 sentences.

6. **ความเชื่อมั่น (Confidence Score)**
   End with: "Confidence: X.XX" (0.0 to 1.0)

Format as Markdown starting with '## 🐻 BEAR RESEARCHER REPORT'`,
		st.Ticker,
		sectionOf(st.Market, "No market data available"),
		sectionOf(st.Fundamentals, "No fundamentals data available"),
		sectionOf(st.NewsReport, "No news data available"),
		sectionOf(st.Risk, "No risk data available"))

	report := a.generate(ctx, bearSystemPrompt, user)

	return &models.AgentReport{
		Agent:      a.name,
		Signal:     models.SignalBearish,
		Confidence: ExtractConfidence(report, 0.6),
		Section:    report,
	}
}

// DebateModerator weighs the bull and bear theses and names a winner.
type DebateModerator struct {
	base
}

const moderatorSystemPrompt = `You are a Debate Moderator - an impartial financial analyst.
Your role is to fairly evaluate both bullish and bearish arguments
and determine which side makes the stronger case.

**Style Guidelines:**
- Be objective and balanced
- Focus on the quality of arguments, not just confidence
- Acknowledge valid points from both sides
- Write entirely in Thai
- Keep it concise`

func (a *DebateModerator) Moderate(ctx context.Context, st *models.AnalysisState) *models.DebateOutcome {
	bullConf, bearConf := 0.5, 0.5
	if st.Bull != nil {
		bullConf = st.Bull.Confidence
	}
	if st.Bear != nil {
		bearConf = st.Bear.Confidence
	}

	user := fmt.Sprintf(`Review the Bull vs Bear debate for %s:

=== 🐂 BULL RESEARCHER (Confidence: %.2f) ===
%s

---

=== 🐻 BEAR RESEARCHER (Confidence: %.2f) ===
%s

---

Provide a balanced moderation:

1. **สรุปข้อโต้แย้งฝั่ง Bull (Bull Summary)**
   Key points the bull side made well

2. **สรุปข้อโต้แย้งฝั่ง Bear (Bear Summary)**
   Key points the bear side made well

3. **การประเมินข้อโต้แย้ง (Argument Assessment)**
   - Which side presents stronger evidence?
   - What are the key uncertainties?

4. **จุดที่ทั้งสองฝ่ายเห็นตรงกัน (Points of Agreement)**
   Any areas where both sides agree

5. **ผลการอภิปราย (Debate Verdict)**
   State clearly: BULL_WINS, BEAR_WINS, or DRAW
   Brief explanation why

6. **ความเชื่อมั่นในผล (Confidence in Verdict)**
   End with: "Confidence: X.XX" (0.0 to 1.0)

Format as Markdown starting with '## ⚖️ DEBATE MODERATOR REPORT'`,
		st.Ticker, bullConf, sectionOf(st.Bull, ""), bearConf, sectionOf(st.Bear, ""))

	report := a.generate(ctx, moderatorSystemPrompt, user)

	return &models.DebateOutcome{
		Verdict:        ExtractVerdict(report, bullConf, bearConf),
		BullConfidence: bullConf,
		BearConfidence: bearConf,
		Confidence:     ExtractConfidence(report, 0.5),
		Section:        report,
	}
}
