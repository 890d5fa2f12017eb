package usecase

import (
	"fmt"
	"strings"
	"time"

	"StockSage/internal/domain/models"
)

const reportTimeLayout = "2006-01-02 15:04:05"

func section(r *models.AgentReport) string {
	if r == nil {
		return ""
	}
	return r.Section
}

// BuildStockReport assembles the full Markdown report from every agent
// section, with the quantitative metrics block between the risk analysis
// and the debate.
func BuildStockReport(st *models.AnalysisState, metricsSection string, now time.Time) string {
	debateSection := ""
	if st.Debate != nil {
		debateSection = st.Debate.Section
	}
	judgmentSection := ""
	if st.Judgment != nil {
		judgmentSection = st.Judgment.Section
	}

	sections := []string{
		fmt.Sprintf("# 📊 รายงานการวิเคราะห์หุ้น %s", st.Ticker),
		fmt.Sprintf("\n**วันที่วิเคราะห์:** %s", now.Format(reportTimeLayout)),
		fmt.Sprintf("\n**คำตัดสินสุดท้าย:** %s", st.Decision),
		"\n---",
		section(st.Market),
		"\n---",
		section(st.Fundamentals),
		"\n---",
		section(st.NewsReport),
		"\n---",
		section(st.Social),
		"\n---",
		section(st.Risk),
		"\n---",
		metricsSection,
		"\n---",
		section(st.Bull),
		"\n---",
		section(st.Bear),
		"\n---",
		debateSection,
		"\n---",
		judgmentSection,
		"\n---",
		st.Plan,
		"\n---",
		"\n## ⚠️ Disclaimer",
		"\n**คำเตือน:** รายงานนี้จัดทำโดย AI เพื่อเป็นข้อมูลประกอบการตัดสินใจเท่านั้น",
	}

	return strings.Join(sections, "\n")
}

// BuildCryptoReport assembles the crypto-flow report from the crypto,
// news, and social sections.
func BuildCryptoReport(st *models.AnalysisState, now time.Time) string {
	signal := models.SignalNeutral
	if st.Market != nil {
		signal = st.Market.Signal
	}

	sections := []string{
		fmt.Sprintf("# 💰 รายงานการวิเคราะห์ Cryptocurrency %s", st.Ticker),
		fmt.Sprintf("\n**วันที่วิเคราะห์:** %s", now.Format(reportTimeLayout)),
		fmt.Sprintf("\n**สัญญาณ:** %s", signal),
		"\n---",
		section(st.Market),
		"\n---",
		section(st.NewsReport),
		"\n---",
		section(st.Social),
		"\n---",
		"\n## ⚠️ Disclaimer",
		"\n**คำเตือน:** Cryptocurrency มีความผันผวนสูงมาก การลงทุนมีความเสี่ยง ควรศึกษาข้อมูลให้ดีก่อนตัดสินใจ",
		"\n**หมายเหตุ:** รายงานนี้จัดทำโดย AI เพื่อเป็นข้อมูลประกอบการตัดสินใจเท่านั้น",
	}

	return strings.Join(sections, "\n")
}
