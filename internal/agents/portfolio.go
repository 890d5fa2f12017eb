package agents

import (
	"context"
	"fmt"

	"StockSage/internal/domain/models"
)

// PortfolioManager synthesizes every report and debate outcome into the
// final trade decision.
type PortfolioManager struct {
	base
}

const portfolioSystemPrompt = `You are a Portfolio Manager with final decision-making authority.
Your goal is to synthesize ALL analysis, debates, and risk assessments to make a profitable yet prudent investment decision.

Your Inputs:
1. Technical & Fundamental Analysis
2. Sentiment Analysis (News & Social)
3. Bull vs Bear Debate (The arguments)
4. Debate Verdict (Who won?)
5. Risk Debate Judgment (Is the risk acceptable?)

Your Task:
- Weigh the evidence holistically.
- If the debate was heated but one side won clearly, respect that verdict.
- If the risk judgment suggests "TOO RISKY", be very cautious about buying.
- Write entirely in Thai.
- Conclude with a clear ACTION: BUY, SELL, or HOLD.`

// Decide returns the final decision and the manager's report section.
func (a *PortfolioManager) Decide(ctx context.Context, st *models.AnalysisState) (models.Decision, string) {
	debateSection := ""
	if st.Debate != nil {
		debateSection = st.Debate.Section
	}
	judgmentSection := ""
	if st.Judgment != nil {
		judgmentSection = st.Judgment.Section
	}

	user := fmt.Sprintf(`Make your Final Decision for %s based on this dossier:

=== 1. CORE ANALYSIS ===
Market: %s...
Fundamentals: %s...
News/Social: %s... %s...

=== 2. BULL VS BEAR DEBATE ===
Bull Case: %s...
Bear Case: %s...
Moderator Verdict: %s

=== 3. RISK ASSESSMENT ===
Risk Report: %s...
Risk Debate Judgment: %s

=== YOUR DECISION ===
Please provide:
1. **บทสรุปผู้บริหาร (Executive Summary)**: synthesis of the strongest points from all sides.
2. **การประเมินความเสี่ยง (Risk Evaluation)**: strictly based on the Risk Judgment.
3. **กลยุทธ์แนะนำ (Recommended Strategy)**: Action (BUY/SELL/HOLD), Entry Price, Target Price, Stop Loss (if applicable).
4. **เหตุผลประกอบ (Rationale)**: Why this decision?

Format the output as a clean Markdown section starting with '## 💼 PORTFOLIO MANAGER DECISION'.`,
		st.Ticker,
		truncateRunes(sectionOf(st.Market, ""), 500),
		truncateRunes(sectionOf(st.Fundamentals, ""), 500),
		truncateRunes(sectionOf(st.NewsReport, ""), 300),
		truncateRunes(sectionOf(st.Social, ""), 300),
		truncateRunes(sectionOf(st.Bull, ""), 500),
		truncateRunes(sectionOf(st.Bear, ""), 500),
		debateSection,
		truncateRunes(sectionOf(st.Risk, ""), 500),
		judgmentSection)

	report := a.generate(ctx, portfolioSystemPrompt, user)

	return ExtractAction(report), report
}
