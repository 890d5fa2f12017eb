package agents

import (
	"context"
	"fmt"
	"strings"

	"StockSage/internal/domain/models"
	applogger "StockSage/pkg/logger"
)

// RiskyDebator argues for aggressive, high-risk positioning.
type RiskyDebator struct {
	base
}

const riskySystemPrompt = `You are a RISKY/AGGRESSIVE Analyst in a risk debate.
Your role is to advocate for high-risk, high-reward investment strategies.

Your perspective:
- Fortune favors the bold - big risks lead to big rewards
- Market timing and momentum are key opportunities
- Conservative approaches miss the best gains
- Volatility creates opportunity, not just risk

**IMPORTANT:**
- Be persuasive and engaging, like a real debate
- Counter the conservative viewpoints with specific data
- Focus on potential upside and growth opportunities
- Write in Thai language
- Output conversationally as if speaking, no special formatting`

func (a *RiskyDebator) Debate(ctx context.Context, st *models.AnalysisState) *models.AgentReport {
	user := fmt.Sprintf(`คุณกำลังอภิปรายเรื่องความเสี่ยงในการลงทุน %s

ข้อมูลที่มี:
- Market Analysis: %s
- Fundamentals: %s
- News: %s

ประวัติการอภิปราย:
ยังไม่มีการอภิปราย - คุณพูดก่อน

กรุณานำเสนอมุมมอง RISKY/AGGRESSIVE ของคุณ:
1. ทำไมควรเสี่ยง - โอกาสทำกำไรสูง
2. ข้อโต้แย้งต่อฝ่ายอนุรักษ์นิยม
3. ตัวอย่างจากข้อมูลที่สนับสนุนการเสี่ยง
4. สรุปจุดยืน

พูดแบบกำลังโต้วาทีจริงๆ ไม่ต้องมี format พิเศษ`,
		st.Ticker,
		truncateRunes(sectionOf(st.Market, ""), 1000),
		truncateRunes(sectionOf(st.Fundamentals, ""), 1000),
		truncateRunes(sectionOf(st.NewsReport, ""), 1000))

	response := a.generate(ctx, riskySystemPrompt, user)

	return &models.AgentReport{
		Agent:    a.name,
		Signal:   models.SignalBullish,
		Argument: response,
		Section:  "## 🔥 นักวิเคราะห์ฝ่ายเสี่ยงสูง (Risky Analyst)\n\n" + response,
	}
}

// ConservativeDebator argues for capital preservation, countering the risky
// debator's latest argument.
type ConservativeDebator struct {
	base
}

const conservativeSystemPrompt = `You are a CONSERVATIVE/SAFE Analyst in a risk debate.
Your role is to advocate for cautious, low-risk investment strategies.

Your perspective:
- Capital preservation is the top priority
- "First, do no harm" - avoid losses before seeking gains
- High volatility is dangerous, not opportunity
- Patience and discipline beat speculation

**IMPORTANT:**
- Counter the aggressive viewpoints with risk data
- Emphasize potential downsides and losses
- Focus on protecting capital
- Write in Thai language
- Output conversationally as if speaking, no special formatting`

func (a *ConservativeDebator) Debate(ctx context.Context, st *models.AnalysisState) *models.AgentReport {
	user := fmt.Sprintf(`คุณกำลังอภิปรายเรื่องความเสี่ยงในการลงทุน %s

ข้อมูลที่มี:
- Market Analysis: %s
- Fundamentals: %s
- News: %s
- Risk Analysis: %s

ข้อโต้แย้งจากฝ่ายเสี่ยงสูง:
%s

กรุณานำเสนอมุมมอง CONSERVATIVE/SAFE ของคุณ:
1. ความเสี่ยงที่ต้องระวัง
2. ทำไมการเสี่ยงสูงอันตราย
3. ข้อโต้แย้งต่อฝ่ายเสี่ยง
4. ข้อเสนอที่ปลอดภัยกว่า
5. สรุปจุดยืน

พูดแบบกำลังโต้วาทีจริงๆ ไม่ต้องมี format พิเศษ`,
		st.Ticker,
		truncateRunes(sectionOf(st.Market, ""), 800),
		truncateRunes(sectionOf(st.Fundamentals, ""), 800),
		truncateRunes(sectionOf(st.NewsReport, ""), 800),
		truncateRunes(sectionOf(st.Risk, ""), 800),
		orDefault(truncateRunes(argumentOf(st.Risky), 500), "ยังไม่มี"))

	response := a.generate(ctx, conservativeSystemPrompt, user)

	return &models.AgentReport{
		Agent:    a.name,
		Signal:   models.SignalBearish,
		Argument: response,
		Section:  "## 🛡️ นักวิเคราะห์ฝ่ายอนุรักษ์นิยม (Conservative Analyst)\n\n" + response,
	}
}

// NeutralDebator argues the middle ground between the two extremes.
type NeutralDebator struct {
	base
}

const neutralSystemPrompt = `You are a NEUTRAL/BALANCED Analyst in a risk debate.
Your role is to advocate for moderate, balanced investment strategies.

Your perspective:
- Balance is key - neither too risky nor too conservative
- Diversification and position sizing matter
- Both upside potential and downside protection are important
- Data-driven decisions beat emotional extremes

**IMPORTANT:**
- Engage with both risky and safe arguments
- Point out weaknesses in both extreme positions
- Advocate for the middle ground with specific reasoning
- Write in Thai language
- Output conversationally as if speaking, no special formatting`

func (a *NeutralDebator) Debate(ctx context.Context, st *models.AnalysisState) *models.AgentReport {
	user := fmt.Sprintf(`คุณกำลังอภิปรายเรื่องความเสี่ยงในการลงทุน %s

ข้อมูลที่มี:
- Market Analysis: %s
- Fundamentals: %s
- News: %s

ข้อโต้แย้งจากฝ่ายเสี่ยงสูง:
%s

ข้อโต้แย้งจากฝ่ายอนุรักษ์นิยม:
%s

กรุณานำเสนอมุมมอง NEUTRAL/BALANCED ของคุณ:
1. จุดแข็งและจุดอ่อนของทั้งสองฝ่าย
2. ทำไมแนวทางสายกลางดีกว่า
3. ข้อเสนอที่สมดุล - ทั้งโอกาสและความเสี่ยง
4. สรุปจุดยืน

พูดแบบกำลังโต้วาทีจริงๆ ไม่ต้องมี format พิเศษ`,
		st.Ticker,
		truncateRunes(sectionOf(st.Market, ""), 800),
		truncateRunes(sectionOf(st.Fundamentals, ""), 800),
		truncateRunes(sectionOf(st.NewsReport, ""), 800),
		orDefault(truncateRunes(argumentOf(st.Risky), 500), "ยังไม่มี"),
		orDefault(truncateRunes(argumentOf(st.Conservative), 500), "ยังไม่มี"))

	response := a.generate(ctx, neutralSystemPrompt, user)

	return &models.AgentReport{
		Agent:    a.name,
		Signal:   models.SignalNeutral,
		Argument: response,
		Section:  "## ⚖️ นักวิเคราะห์สายกลาง (Neutral Analyst)\n\n" + response,
	}
}

// RiskJudge resolves the three-way risk debate into a clear decision. A
// failed or empty generation falls back to a canned Thai HOLD verdict so a
// decision is always produced.
type RiskJudge struct {
	base
}

const judgeSystemPrompt = `You are the Risk Management Judge.
Your role is to evaluate the debate between three risk analysts and make a CLEAR decision.

Rules:
1. You MUST give a clear verdict: BUY, SELL, or HOLD
2. Do NOT choose HOLD just because all sides seem valid - be decisive
3. Summarize the strongest points from each analyst
4. Explain your reasoning clearly
5. Provide an adjusted trading recommendation

**IMPORTANT:**
- Be decisive - traders need clear direction
- Base your decision on the strength of arguments
- Write in Thai language`

const judgeFallback = `## ⚡ การตัดสินอัตโนมัติ (Fallback)

เนื่องจากระบบไม่สามารถวิเคราะห์ได้อย่างสมบูรณ์ ขอแนะนำ:

**คำตัดสิน: HOLD**

**เหตุผล:**
- ควรรอข้อมูลเพิ่มเติมก่อนตัดสินใจ
- พิจารณาปัจจัยพื้นฐานและเทคนิคัลร่วมกัน
- ปรึกษานักวิเคราะห์เพิ่มเติมก่อนลงทุน

**ฝ่ายที่มีเหตุผลแข็งแกร่งที่สุด:** NEUTRAL (สายกลาง)

**คำแนะนำ:**
- หากต้องการลงทุน ควรเริ่มด้วย position size เล็กๆ
- ตั้ง stop loss เสมอ
- ติดตามข่าวสารอย่างใกล้ชิด
`

func (a *RiskJudge) Judge(ctx context.Context, st *models.AnalysisState) *models.RiskJudgment {
	user := fmt.Sprintf(`คุณเป็นผู้พิพากษาการอภิปรายเรื่องความเสี่ยงสำหรับ %s

=== 🔥 ฝ่ายเสี่ยงสูง (Risky) ===
%s

=== ⚖️ ฝ่ายสายกลาง (Neutral) ===
%s

=== 🛡️ ฝ่ายอนุรักษ์นิยม (Conservative) ===
%s

แผนเดิมจาก Trader: %s

---

กรุณาตัดสิน:

1. **สรุปประเด็นสำคัญจากแต่ละฝ่าย**
   - ฝ่ายเสี่ยง: [จุดแข็งที่สุด]
   - ฝ่ายกลาง: [จุดแข็งที่สุด]
   - ฝ่ายอนุรักษ์: [จุดแข็งที่สุด]

2. **ฝ่ายที่มีเหตุผลแข็งแกร่งที่สุด**: [ระบุ]

3. **คำตัดสิน**: [BUY / SELL / HOLD]

4. **เหตุผลโดยละเอียด**:
   - ทำไมถึงเลือกคำตัดสินนี้

5. **คำแนะนำเพิ่มเติม**:
   - ควรทำอย่างไร, position size แนะนำ, stop loss ฯลฯ

จงตัดสินใจอย่างชัดเจน!`,
		st.Ticker,
		argumentOf(st.Risky),
		argumentOf(st.NeutralRisk),
		argumentOf(st.Conservative),
		orDefault(st.Plan, "ยังไม่มี"))

	response := a.generate(ctx, judgeSystemPrompt, user)

	// Safety filters can return empty or truncated verdicts.
	if response == errorResponse || len([]rune(strings.TrimSpace(response))) < 50 {
		a.log.Warn("risk judge response unusable, using fallback verdict",
			applogger.String("ticker", st.Ticker))
		response = judgeFallback
	}

	return &models.RiskJudgment{
		Decision:    ExtractDecision(response),
		WinningSide: winningSide(response),
		Verdict:     response,
		Section:     "## ⚖️ คำตัดสินของผู้พิพากษา (Risk Judge)\n\n" + response,
	}
}

// winningSide infers which debator the judge sided with from the Thai
// verdict text.
func winningSide(response string) string {
	strongest := strings.Contains(response, "แข็งแกร่ง")
	switch {
	case strongest && strings.Contains(response, "เสี่ยง"):
		return "RISKY"
	case strongest && strings.Contains(response, "อนุรักษ์"):
		return "CONSERVATIVE"
	default:
		return "NEUTRAL"
	}
}
