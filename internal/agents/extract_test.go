package agents

import (
	"testing"

	"StockSage/internal/domain/models"
)

func TestExtractConfidence(t *testing.T) {
	cases := []struct {
		name   string
		report string
		def    float64
		want   float64
	}{
		{"plain", "analysis...\nConfidence: 0.85", 0.5, 0.85},
		{"lowercase", "confidence: 0.42", 0.5, 0.42},
		{"percentage scale", "Confidence: 85", 0.5, 0.85},
		{"clamped high", "Confidence: 150", 0.5, 1.0},
		{"thai label", "ความเชื่อมั่น: 0.66", 0.5, 0.66},
		{"missing uses default", "no score here", 0.7, 0.7},
		{"bull default", "", 0.7, 0.7},
		{"bear default", "", 0.6, 0.6},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractConfidence(tc.report, tc.def); got != tc.want {
				t.Fatalf("ExtractConfidence(%q) = %v, want %v", tc.report, got, tc.want)
			}
		})
	}
}

func TestExtractDecision(t *testing.T) {
	cases := []struct {
		report string
		want   models.Decision
	}{
		{"คำตัดสิน: BUY", models.DecisionBuy},
		{"คำตัดสิน: SELL", models.DecisionSell},
		{"mentions BUY and SELL both", models.DecisionHold},
		{"nothing definitive", models.DecisionHold},
	}
	for _, tc := range cases {
		if got := ExtractDecision(tc.report); got != tc.want {
			t.Fatalf("ExtractDecision(%q) = %v, want %v", tc.report, got, tc.want)
		}
	}
}

func TestExtractSignal(t *testing.T) {
	if got := ExtractSignal("Outlook: BULLISH because..."); got != models.SignalBullish {
		t.Fatalf("got %v", got)
	}
	if got := ExtractSignal("verdict BEARISH"); got != models.SignalBearish {
		t.Fatalf("got %v", got)
	}
	if got := ExtractSignal("nothing clear"); got != models.SignalNeutral {
		t.Fatalf("got %v", got)
	}
	// First match wins when both appear.
	if got := ExtractSignal("could be BEARISH or BULLISH"); got != models.SignalBullish {
		t.Fatalf("got %v", got)
	}
}

func TestExtractSentiment(t *testing.T) {
	if got := ExtractSentiment("verdict: POSITIVE"); got != models.SignalBullish {
		t.Fatalf("got %v", got)
	}
	if got := ExtractSentiment("verdict: NEGATIVE"); got != models.SignalBearish {
		t.Fatalf("got %v", got)
	}
}

func TestExtractRiskLevel(t *testing.T) {
	if got := ExtractRiskLevel("risk is HIGH here"); got != RiskHigh {
		t.Fatalf("got %v", got)
	}
	if got := ExtractRiskLevel("risk is LOW"); got != RiskLow {
		t.Fatalf("got %v", got)
	}
	if got := ExtractRiskLevel("somewhere in between"); got != RiskMedium {
		t.Fatalf("got %v", got)
	}
}

func TestExtractVerdict(t *testing.T) {
	if got := ExtractVerdict("ผล: BULL_WINS", 0.5, 0.5); got != models.SignalBullish {
		t.Fatalf("got %v", got)
	}
	if got := ExtractVerdict("the BEAR WINS today", 0.5, 0.5); got != models.SignalBearish {
		t.Fatalf("got %v", got)
	}
	if got := ExtractVerdict("it is a DRAW", 0.9, 0.1); got != models.SignalNeutral {
		t.Fatalf("got %v", got)
	}

	// No explicit verdict: confidence gap beyond 0.15 decides.
	if got := ExtractVerdict("unclear", 0.8, 0.6); got != models.SignalBullish {
		t.Fatalf("gap 0.2 bullish: got %v", got)
	}
	if got := ExtractVerdict("unclear", 0.5, 0.7); got != models.SignalBearish {
		t.Fatalf("gap -0.2 bearish: got %v", got)
	}
	if got := ExtractVerdict("unclear", 0.6, 0.5); got != models.SignalNeutral {
		t.Fatalf("gap 0.1 draw: got %v", got)
	}
}

func TestExtractAction(t *testing.T) {
	cases := []struct {
		report string
		want   models.Decision
	}{
		{"ACTION: BUY now", models.DecisionBuy},
		{"we recommend **SELL** today", models.DecisionSell},
		{"Recommendation: buy", models.DecisionBuy},
		{"just mentions buy somewhere", models.DecisionHold},
	}
	for _, tc := range cases {
		if got := ExtractAction(tc.report); got != tc.want {
			t.Fatalf("ExtractAction(%q) = %v, want %v", tc.report, got, tc.want)
		}
	}
}

func TestAnnualizedVolatility(t *testing.T) {
	// Constant prices carry zero volatility.
	flat := make([]models.Candle, 10)
	for i := range flat {
		flat[i] = models.Candle{Close: 100}
	}
	if got := AnnualizedVolatility(flat); got != 0 {
		t.Fatalf("flat series volatility = %v", got)
	}

	// Alternating moves must produce a positive estimate.
	var noisy []models.Candle
	price := 100.0
	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			price *= 1.02
		} else {
			price *= 0.98
		}
		noisy = append(noisy, models.Candle{Close: price})
	}
	if got := AnnualizedVolatility(noisy); got <= 0 {
		t.Fatalf("noisy series volatility = %v", got)
	}

	if got := AnnualizedVolatility(nil); got != 0 {
		t.Fatalf("nil series volatility = %v", got)
	}
}
