package usecase

import (
	"strings"
	"testing"
	"time"

	"StockSage/internal/domain/models"
)

func TestBuildStockReport(t *testing.T) {
	st := &models.AnalysisState{
		Ticker:   "AAPL",
		Decision: models.DecisionBuy,
		Market:   &models.AgentReport{Section: "## market section"},
		Risk:     &models.AgentReport{Section: "## risk section"},
		Bull:     &models.AgentReport{Section: "## bull section"},
		Plan:     "## trading plan",
	}
	now := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	report := BuildStockReport(st, "## metrics section", now)

	if !strings.HasPrefix(report, "# 📊 รายงานการวิเคราะห์หุ้น AAPL") {
		t.Fatalf("header: %.60s", report)
	}
	if !strings.Contains(report, "**วันที่วิเคราะห์:** 2025-06-01 09:30:00") {
		t.Error("missing analysis timestamp")
	}
	if !strings.Contains(report, "**คำตัดสินสุดท้าย:** BUY") {
		t.Error("missing decision line")
	}

	// Metrics sit between the risk analysis and the bull case.
	risk := strings.Index(report, "## risk section")
	metrics := strings.Index(report, "## metrics section")
	bull := strings.Index(report, "## bull section")
	if risk < 0 || metrics < 0 || bull < 0 {
		t.Fatal("missing a section")
	}
	if !(risk < metrics && metrics < bull) {
		t.Errorf("section order wrong: risk=%d metrics=%d bull=%d", risk, metrics, bull)
	}
	if !strings.Contains(report, "## ⚠️ Disclaimer") {
		t.Error("missing disclaimer")
	}
}

func TestBuildStockReportNilSections(t *testing.T) {
	st := &models.AnalysisState{Ticker: "TSLA", Decision: models.DecisionHold}

	report := BuildStockReport(st, "", time.Now())
	if !strings.Contains(report, "รายงานการวิเคราะห์หุ้น TSLA") {
		t.Fatal("header missing")
	}
	if !strings.Contains(report, "**คำตัดสินสุดท้าย:** HOLD") {
		t.Error("decision missing")
	}
}

func TestBuildCryptoReport(t *testing.T) {
	st := &models.AnalysisState{
		Ticker: "BTC-USD",
		Market: &models.AgentReport{Section: "## crypto section", Signal: models.SignalBullish},
	}

	report := BuildCryptoReport(st, time.Now())
	if !strings.HasPrefix(report, "# 💰 รายงานการวิเคราะห์ Cryptocurrency BTC-USD") {
		t.Fatalf("header: %.60s", report)
	}
	if !strings.Contains(report, "**สัญญาณ:** BULLISH") {
		t.Error("missing signal line")
	}
	if !strings.Contains(report, "Cryptocurrency มีความผันผวนสูงมาก") {
		t.Error("missing crypto disclaimer")
	}
}

func TestBuildCryptoReportDefaultsNeutral(t *testing.T) {
	report := BuildCryptoReport(&models.AnalysisState{Ticker: "ETH-USD"}, time.Now())
	if !strings.Contains(report, "**สัญญาณ:** NEUTRAL") {
		t.Error("expected NEUTRAL default signal")
	}
}
