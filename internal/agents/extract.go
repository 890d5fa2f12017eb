package agents

import (
	"regexp"
	"strconv"
	"strings"

	"StockSage/internal/domain/models"
)

var confidencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`[Cc]onfidence[:\s]+([0-9]*\.?[0-9]+)`),
	regexp.MustCompile(`ความเชื่อมั่น[:\s]+([0-9]*\.?[0-9]+)`),
}

// ExtractConfidence finds a "Confidence: X.XX" line (English or Thai) in a
// report. Scores above 1 are treated as percentages. The result is clamped
// to [0, 1]; def is returned when no score is present.
func ExtractConfidence(report string, def float64) float64 {
	for _, p := range confidencePatterns {
		m := p.FindStringSubmatch(report)
		if m == nil {
			continue
		}
		score, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if score > 1.0 {
			score /= 100.0
		}
		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}
		return score
	}
	return def
}

// ExtractDecision finds an unambiguous BUY or SELL in a report; anything else
// is HOLD.
func ExtractDecision(report string) models.Decision {
	upper := strings.ToUpper(report)
	hasBuy := strings.Contains(upper, "BUY")
	hasSell := strings.Contains(upper, "SELL")
	switch {
	case hasBuy && !hasSell:
		return models.DecisionBuy
	case hasSell && !hasBuy:
		return models.DecisionSell
	default:
		return models.DecisionHold
	}
}

// ExtractSignal reads a BULLISH or BEARISH verdict from a report, defaulting
// to NEUTRAL. BULLISH takes precedence when both appear, matching the
// original extraction order.
func ExtractSignal(report string) models.Signal {
	upper := strings.ToUpper(report)
	switch {
	case strings.Contains(upper, "BULLISH"):
		return models.SignalBullish
	case strings.Contains(upper, "BEARISH"):
		return models.SignalBearish
	default:
		return models.SignalNeutral
	}
}

// ExtractSentiment maps POSITIVE/NEGATIVE news verdicts onto signals.
func ExtractSentiment(report string) models.Signal {
	upper := strings.ToUpper(report)
	switch {
	case strings.Contains(upper, "POSITIVE"):
		return models.SignalBullish
	case strings.Contains(upper, "NEGATIVE"):
		return models.SignalBearish
	default:
		return models.SignalNeutral
	}
}

// RiskLevel is the risk analyst's verdict.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// ExtractRiskLevel reads a LOW/MEDIUM/HIGH risk verdict, defaulting to
// MEDIUM. HIGH takes precedence when several levels are mentioned.
func ExtractRiskLevel(report string) RiskLevel {
	upper := strings.ToUpper(report)
	switch {
	case strings.Contains(upper, "HIGH"):
		return RiskHigh
	case strings.Contains(upper, "LOW"):
		return RiskLow
	default:
		return RiskMedium
	}
}

// ExtractVerdict reads the debate moderator's BULL_WINS/BEAR_WINS/DRAW
// verdict. When the report names no winner, the confidence gap decides: a
// difference above 0.15 picks the more confident side, otherwise a draw.
func ExtractVerdict(report string, bullConf, bearConf float64) models.Signal {
	upper := strings.ToUpper(report)
	switch {
	case strings.Contains(upper, "BULL_WINS") || strings.Contains(upper, "BULL WINS"):
		return models.SignalBullish
	case strings.Contains(upper, "BEAR_WINS") || strings.Contains(upper, "BEAR WINS"):
		return models.SignalBearish
	case strings.Contains(upper, "DRAW"):
		return models.SignalNeutral
	}

	diff := bullConf - bearConf
	switch {
	case diff > 0.15:
		return models.SignalBullish
	case diff < -0.15:
		return models.SignalBearish
	default:
		return models.SignalNeutral
	}
}

// ExtractAction reads the portfolio manager's explicit action markers.
// Unlike ExtractDecision, a bare BUY or SELL elsewhere in the text does not
// count.
func ExtractAction(report string) models.Decision {
	upper := strings.ToUpper(report)
	for _, marker := range []string{"ACTION: BUY", "**BUY**", "RECOMMENDATION: BUY"} {
		if strings.Contains(upper, marker) {
			return models.DecisionBuy
		}
	}
	for _, marker := range []string{"ACTION: SELL", "**SELL**", "RECOMMENDATION: SELL"} {
		if strings.Contains(upper, marker) {
			return models.DecisionSell
		}
	}
	return models.DecisionHold
}
