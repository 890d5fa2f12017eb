package scoring

import (
	"fmt"
	"math"
	"strings"

	"StockSage/internal/domain/models"
)

// TechnicalBreakdown holds the per-indicator scores behind the technical
// score.
type TechnicalBreakdown struct {
	Score       float64
	RSI         float64
	RSIScore    float64
	MACDSignal  string
	MACDScore   float64
	SMAPct      float64
	SMASignal   string
	SMAScore    float64
	VolumePct   float64
	VolumeTrend string
	VolumeScore float64
}

// FundamentalBreakdown holds the per-metric scores behind the fundamental
// score. Zero-valued inputs are skipped and do not contribute to the weight.
type FundamentalBreakdown struct {
	Score       float64
	PE          float64
	PEScore     float64
	ROE         float64
	ROEScore    float64
	Margin      float64
	MarginScore float64
	DebtEquity  float64
	DEScore     float64
	MetricsUsed int
}

// SentimentBreakdown holds keyword counts behind the sentiment score.
type SentimentBreakdown struct {
	Score        float64
	Sentiment    models.Signal
	BullishWords int
	BearishWords int
}

// CombinedScore is the full quantitative score with its components.
type CombinedScore struct {
	Combined    float64
	Signal      models.Signal
	Confidence  float64
	Technical   TechnicalBreakdown
	Fundamental FundamentalBreakdown
	Sentiment   SentimentBreakdown
}

// Scores converts the breakdown into the compact form stored with an
// analysis.
func (c *CombinedScore) Scores() models.Scores {
	return models.Scores{
		Technical:   round1(c.Technical.Score),
		Fundamental: round1(c.Fundamental.Score),
		Sentiment:   round1(c.Sentiment.Score),
		Combined:    round1(c.Combined),
		Signal:      c.Signal,
	}
}

// TechnicalScore scores daily candles 0-100. RSI, MACD, price-vs-SMA50,
// and the 20-bar volume trend each carry a quarter of the weight. Missing
// history degrades the affected indicator to neutral.
func TechnicalScore(candles []models.Candle) TechnicalBreakdown {
	closes := make([]float64, len(candles))
	volumes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
		volumes[i] = c.Volume
	}

	b := TechnicalBreakdown{}

	// Oversold is bullish, overbought is bearish.
	b.RSI = RSI(closes, 14)
	switch {
	case b.RSI < 30:
		b.RSIScore = clampScore(80 + (30 - b.RSI))
	case b.RSI > 70:
		b.RSIScore = clampScore(20 - (b.RSI - 70))
	default:
		b.RSIScore = 50
	}

	macd, signal, ok := MACD(closes)
	spread := math.Abs(macd - signal)
	switch {
	case !ok || macd == signal:
		b.MACDSignal = "NEUTRAL"
		b.MACDScore = 50
	case macd > signal:
		b.MACDSignal = "BULLISH"
		b.MACDScore = clampScore(70 + math.Min(30, spread*10))
	default:
		b.MACDSignal = "BEARISH"
		b.MACDScore = clampScore(30 - math.Min(30, spread*10))
	}

	smaPct, ok := SMAPosition(closes, 50)
	b.SMAPct = smaPct
	switch {
	case !ok:
		b.SMASignal = "NEUTRAL"
		b.SMAScore = 50
	default:
		b.SMAScore = clampScore(50 + smaPct*2)
		switch {
		case smaPct > 2:
			b.SMASignal = "BULLISH"
		case smaPct < -2:
			b.SMASignal = "BEARISH"
		default:
			b.SMASignal = "NEUTRAL"
		}
	}

	volPct, ok := VolumeTrend(volumes, 20)
	b.VolumePct = volPct
	switch {
	case !ok:
		b.VolumeTrend = "STABLE"
		b.VolumeScore = 50
	default:
		b.VolumeScore = clampScore(50 + volPct/4)
		switch {
		case volPct > 20:
			b.VolumeTrend = "INCREASING"
		case volPct < -20:
			b.VolumeTrend = "DECREASING"
		default:
			b.VolumeTrend = "STABLE"
		}
	}

	b.Score = b.RSIScore*0.25 + b.MACDScore*0.25 + b.SMAScore*0.25 + b.VolumeScore*0.25
	return b
}

// FundamentalScore scores valuation and profitability metrics 0-100.
// Metrics that are unavailable (zero) are excluded and the remaining
// weights renormalized. With no metrics at all the score is neutral.
func FundamentalScore(f *models.Financials) FundamentalBreakdown {
	b := FundamentalBreakdown{Score: 50}
	if f == nil {
		return b
	}

	var weighted, totalWeight float64

	if f.PERatio > 0 {
		b.PE = f.PERatio
		b.PEScore = clampScore(100 - (f.PERatio-10)*2)
		weighted += b.PEScore * 0.25
		totalWeight += 0.25
		b.MetricsUsed++
	}
	if f.ReturnOnEquity != 0 {
		b.ROE = f.ReturnOnEquity * 100
		b.ROEScore = clampScore(30 + b.ROE*2.5)
		weighted += b.ROEScore * 0.25
		totalWeight += 0.25
		b.MetricsUsed++
	}
	if f.ProfitMargin != 0 {
		b.Margin = f.ProfitMargin * 100
		b.MarginScore = clampScore(30 + b.Margin*3)
		weighted += b.MarginScore * 0.25
		totalWeight += 0.25
		b.MetricsUsed++
	}
	if f.DebtToEquity != 0 {
		b.DebtEquity = f.DebtToEquity
		b.DEScore = clampScore(100 - f.DebtToEquity*0.5)
		weighted += b.DEScore * 0.25
		totalWeight += 0.25
		b.MetricsUsed++
	}

	if totalWeight > 0 {
		b.Score = weighted / totalWeight
	}
	return b
}

var bullishWords = []string{
	"growth", "profit", "beat", "surge", "upgrade", "bullish",
	"เติบโต", "กำไร", "เพิ่ม", "บวก", "ขึ้น",
}

var bearishWords = []string{
	"decline", "loss", "miss", "downgrade", "bearish", "risk",
	"ลด", "ขาดทุน", "ลง", "เสี่ยง", "ลบ",
}

// SentimentScore counts bullish and bearish keywords (English and Thai) in
// the news report text. No keywords at all is neutral.
func SentimentScore(newsReport string) SentimentBreakdown {
	lower := strings.ToLower(newsReport)

	b := SentimentBreakdown{}
	for _, w := range bullishWords {
		if strings.Contains(lower, w) {
			b.BullishWords++
		}
	}
	for _, w := range bearishWords {
		if strings.Contains(lower, w) {
			b.BearishWords++
		}
	}

	total := b.BullishWords + b.BearishWords
	if total == 0 {
		b.Score = 50
		b.Sentiment = models.SignalNeutral
		return b
	}

	b.Score = float64(b.BullishWords) / float64(total) * 100
	switch {
	case b.Score > 60:
		b.Sentiment = models.SignalBullish
	case b.Score < 40:
		b.Sentiment = models.SignalBearish
	default:
		b.Sentiment = models.SignalNeutral
	}
	return b
}

// Combine merges the three component scores with 40/40/20 weights. Combined
// 65 or above is bullish, 35 or below is bearish.
func Combine(tech TechnicalBreakdown, fund FundamentalBreakdown, sent SentimentBreakdown) *CombinedScore {
	combined := tech.Score*0.4 + fund.Score*0.4 + sent.Score*0.2

	signal := models.SignalNeutral
	switch {
	case combined >= 65:
		signal = models.SignalBullish
	case combined <= 35:
		signal = models.SignalBearish
	}

	return &CombinedScore{
		Combined:    combined,
		Signal:      signal,
		Confidence:  math.Round(combined) / 100,
		Technical:   tech,
		Fundamental: fund,
		Sentiment:   sent,
	}
}

// Score runs the full quantitative pipeline over candles, fundamentals, and
// the news report text. Any input may be nil or empty.
func Score(candles []models.Candle, f *models.Financials, newsReport string) *CombinedScore {
	return Combine(TechnicalScore(candles), FundamentalScore(f), SentimentScore(newsReport))
}

// FormatReport renders the score breakdown as the Markdown metrics section
// appended to analysis reports.
func (c *CombinedScore) FormatReport() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## 📊 Quantitative Metrics Score\n\n")
	fmt.Fprintf(&sb, "**Overall Score: %.1f/100 (%s)**\n", c.Combined, c.Signal)
	fmt.Fprintf(&sb, "**Confidence: %.0f%%**\n\n", c.Confidence*100)

	fmt.Fprintf(&sb, "### 📈 Technical Analysis (40%%)\n")
	fmt.Fprintf(&sb, "- **RSI (14):** %.1f → Score: %.1f\n", c.Technical.RSI, c.Technical.RSIScore)
	fmt.Fprintf(&sb, "- **MACD:** %s → Score: %.1f\n", c.Technical.MACDSignal, c.Technical.MACDScore)
	fmt.Fprintf(&sb, "- **Price vs SMA50:** %.2f%% (%s)\n", c.Technical.SMAPct, c.Technical.SMASignal)
	fmt.Fprintf(&sb, "- **Volume Trend:** %s (%.1f%%)\n", c.Technical.VolumeTrend, c.Technical.VolumePct)
	fmt.Fprintf(&sb, "- **Technical Score:** %.1f/100\n\n", c.Technical.Score)

	fmt.Fprintf(&sb, "### 💰 Fundamental Analysis (40%%)\n")
	fmt.Fprintf(&sb, "- **P/E Ratio:** %.1f → Score: %.1f\n", c.Fundamental.PE, c.Fundamental.PEScore)
	fmt.Fprintf(&sb, "- **ROE:** %.1f%% → Score: %.1f\n", c.Fundamental.ROE, c.Fundamental.ROEScore)
	fmt.Fprintf(&sb, "- **Profit Margin:** %.1f%%\n", c.Fundamental.Margin)
	fmt.Fprintf(&sb, "- **Debt/Equity:** %.1f\n", c.Fundamental.DebtEquity)
	fmt.Fprintf(&sb, "- **Fundamental Score:** %.1f/100\n\n", c.Fundamental.Score)

	fmt.Fprintf(&sb, "### 💬 Sentiment Analysis (20%%)\n")
	fmt.Fprintf(&sb, "- **Bullish Signals:** %d\n", c.Sentiment.BullishWords)
	fmt.Fprintf(&sb, "- **Bearish Signals:** %d\n", c.Sentiment.BearishWords)
	fmt.Fprintf(&sb, "- **Sentiment:** %s\n", c.Sentiment.Sentiment)
	fmt.Fprintf(&sb, "- **Sentiment Score:** %.1f/100\n", c.Sentiment.Score)

	return sb.String()
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
