// Package alphavantage fetches technical indicator readings and company
// overviews used as a secondary signal source alongside Finnhub.
package alphavantage

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	xhttp "StockSage/pkg/http"
)

const defaultBaseURL = "https://www.alphavantage.co/query"

// Client calls the Alpha Vantage query API.
type Client struct {
	apiKey  string
	baseURL string
	http    *xhttp.Client
}

// NewClient creates an Alpha Vantage client. An empty baseURL uses the
// public API.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    xhttp.NewClient(xhttp.WithTimeout(15 * time.Second)),
	}
}

// RSIReading is the latest relative strength index value.
type RSIReading struct {
	RSI  float64
	Date string
}

// MACDReading is the latest MACD line, signal line, and histogram.
type MACDReading struct {
	MACD      float64
	Signal    float64
	Histogram float64
	Date      string
}

// SMAReading is the latest simple moving average value.
type SMAReading struct {
	SMA    float64
	Period int
	Date   string
}

// Overview holds company fundamentals from the OVERVIEW function.
type Overview struct {
	PERatio            float64
	PEGRatio           float64
	EPS                float64
	ProfitMargin       float64
	OperatingMargin    float64
	ReturnOnEquity     float64
	Beta               float64
	Week52High         float64
	Week52Low          float64
	AnalystTargetPrice float64
}

func (c *Client) query(ctx context.Context, params map[string][]string) (map[string]interface{}, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("alphavantage: api key not configured")
	}
	params["apikey"] = []string{c.apiKey}

	var raw map[string]interface{}
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      "GET",
		URL:         c.baseURL,
		QueryParams: params,
	}, &raw)
	if err != nil {
		return nil, err
	}

	if _, bad := raw["Error Message"]; bad {
		return nil, fmt.Errorf("alphavantage: error response")
	}
	if _, limited := raw["Note"]; limited {
		return nil, fmt.Errorf("alphavantage: rate limit reached")
	}

	return raw, nil
}

// latestEntry returns the newest date key of a time-series map and its values.
func latestEntry(series map[string]interface{}) (string, map[string]interface{}) {
	if len(series) == 0 {
		return "", nil
	}
	dates := make([]string, 0, len(series))
	for d := range series {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	values, _ := series[dates[0]].(map[string]interface{})
	return dates[0], values
}

func parseField(values map[string]interface{}, key string) float64 {
	s, _ := values[key].(string)
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// RSI returns the latest daily RSI(period) reading.
func (c *Client) RSI(ctx context.Context, symbol string, period int) (*RSIReading, error) {
	raw, err := c.query(ctx, map[string][]string{
		"function":    {"RSI"},
		"symbol":      {symbol},
		"interval":    {"daily"},
		"time_period": {strconv.Itoa(period)},
		"series_type": {"close"},
	})
	if err != nil {
		return nil, fmt.Errorf("alphavantage rsi %s: %w", symbol, err)
	}

	series, _ := raw["Technical Analysis: RSI"].(map[string]interface{})
	date, values := latestEntry(series)
	if values == nil {
		return nil, nil
	}
	return &RSIReading{RSI: parseField(values, "RSI"), Date: date}, nil
}

// MACD returns the latest daily MACD reading.
func (c *Client) MACD(ctx context.Context, symbol string) (*MACDReading, error) {
	raw, err := c.query(ctx, map[string][]string{
		"function":    {"MACD"},
		"symbol":      {symbol},
		"interval":    {"daily"},
		"series_type": {"close"},
	})
	if err != nil {
		return nil, fmt.Errorf("alphavantage macd %s: %w", symbol, err)
	}

	series, _ := raw["Technical Analysis: MACD"].(map[string]interface{})
	date, values := latestEntry(series)
	if values == nil {
		return nil, nil
	}
	return &MACDReading{
		MACD:      parseField(values, "MACD"),
		Signal:    parseField(values, "MACD_Signal"),
		Histogram: parseField(values, "MACD_Hist"),
		Date:      date,
	}, nil
}

// SMA returns the latest daily SMA(period) reading.
func (c *Client) SMA(ctx context.Context, symbol string, period int) (*SMAReading, error) {
	raw, err := c.query(ctx, map[string][]string{
		"function":    {"SMA"},
		"symbol":      {symbol},
		"interval":    {"daily"},
		"time_period": {strconv.Itoa(period)},
		"series_type": {"close"},
	})
	if err != nil {
		return nil, fmt.Errorf("alphavantage sma %s: %w", symbol, err)
	}

	series, _ := raw["Technical Analysis: SMA"].(map[string]interface{})
	date, values := latestEntry(series)
	if values == nil {
		return nil, nil
	}
	return &SMAReading{SMA: parseField(values, "SMA"), Period: period, Date: date}, nil
}

// CompanyOverview returns fundamentals from the OVERVIEW function.
func (c *Client) CompanyOverview(ctx context.Context, symbol string) (*Overview, error) {
	raw, err := c.query(ctx, map[string][]string{
		"function": {"OVERVIEW"},
		"symbol":   {symbol},
	})
	if err != nil {
		return nil, fmt.Errorf("alphavantage overview %s: %w", symbol, err)
	}

	if _, ok := raw["Symbol"]; !ok {
		return nil, nil
	}

	num := func(key string) float64 {
		s, _ := raw[key].(string)
		v, _ := strconv.ParseFloat(s, 64)
		return v
	}

	return &Overview{
		PERatio:            num("PERatio"),
		PEGRatio:           num("PEGRatio"),
		EPS:                num("EPS"),
		ProfitMargin:       num("ProfitMargin"),
		OperatingMargin:    num("OperatingMarginTTM"),
		ReturnOnEquity:     num("ReturnOnEquityTTM"),
		Beta:               num("Beta"),
		Week52High:         num("52WeekHigh"),
		Week52Low:          num("52WeekLow"),
		AnalystTargetPrice: num("AnalystTargetPrice"),
	}, nil
}
