// Package scoring computes quantitative scores from market data,
// independent of any LLM output. Technical indicators feed a 0-100
// technical score, fundamentals feed a fundamental score, and keyword
// sentiment over the news report feeds a sentiment score.
package scoring

// RSI computes the Relative Strength Index over the trailing period using
// simple averages of gains and losses. Below 30 is oversold, above 70 is
// overbought. Returns 50 when there is not enough history.
func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 {
		return 50.0
	}

	var gain, loss float64
	for i := len(closes) - period; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}
	}
	gain /= float64(period)
	loss /= float64(period)

	if loss == 0 {
		if gain == 0 {
			return 50.0
		}
		return 100.0
	}

	rs := gain / loss
	return 100.0 - 100.0/(1.0+rs)
}

// ema computes an exponential moving average series with alpha = 2/(span+1),
// seeded with the first value.
func ema(values []float64, span int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// MACD computes the 12/26 MACD line and its 9-period signal line, returning
// the latest values of each. Requires at least 26 closes.
func MACD(closes []float64) (macd, signal float64, ok bool) {
	if len(closes) < 26 {
		return 0, 0, false
	}

	fast := ema(closes, 12)
	slow := ema(closes, 26)

	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}
	sig := ema(line, 9)

	return line[len(line)-1], sig[len(sig)-1], true
}

// SMAPosition returns the percent difference between the latest close and
// the simple moving average over period. Returns ok=false when there is not
// enough history.
func SMAPosition(closes []float64, period int) (pct float64, ok bool) {
	if len(closes) < period {
		return 0, false
	}

	var sum float64
	for i := len(closes) - period; i < len(closes); i++ {
		sum += closes[i]
	}
	sma := sum / float64(period)
	if sma == 0 {
		return 0, false
	}

	current := closes[len(closes)-1]
	return (current - sma) / sma * 100, true
}

// VolumeTrend compares the average of the last five bars against the average
// volume of the period bars ending period bars ago, returning the percent
// change. Returns ok=false when there is not enough history.
func VolumeTrend(volumes []float64, period int) (pct float64, ok bool) {
	n := len(volumes)
	if n < period || period < 5 {
		return 0, false
	}

	var recent float64
	for i := n - 5; i < n; i++ {
		recent += volumes[i]
	}
	recent /= 5

	end := n - period + 1
	start := end - period
	if start < 0 {
		start = 0
	}
	var historical float64
	for i := start; i < end; i++ {
		historical += volumes[i]
	}
	historical /= float64(end - start)

	if historical == 0 {
		return 0, false
	}
	return (recent - historical) / historical * 100, true
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
