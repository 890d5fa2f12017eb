// Package finnhub provides the Finnhub REST client used for quotes,
// reference data, and sentiment readings, plus the realtime trade stream.
package finnhub

import (
	"context"
	"fmt"
	"time"

	"StockSage/internal/domain/models"
	xhttp "StockSage/pkg/http"
)

const defaultBaseURL = "https://finnhub.io/api/v1"

// RESTClient calls the Finnhub HTTP API.
type RESTClient struct {
	apiKey  string
	baseURL string
	http    *xhttp.Client
}

// NewRESTClient creates a Finnhub REST client. An empty baseURL uses the
// public API.
func NewRESTClient(apiKey, baseURL string) *RESTClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &RESTClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    xhttp.NewClient(xhttp.WithTimeout(10 * time.Second)),
	}
}

func (c *RESTClient) get(ctx context.Context, endpoint string, params map[string][]string, dest interface{}) error {
	if c.apiKey == "" {
		return fmt.Errorf("finnhub: api key not configured")
	}
	if params == nil {
		params = map[string][]string{}
	}
	params["token"] = []string{c.apiKey}

	return c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      "GET",
		URL:         c.baseURL + "/" + endpoint,
		QueryParams: params,
	}, dest)
}

type quoteResponse struct {
	C  float64 `json:"c"`
	D  float64 `json:"d"`
	DP float64 `json:"dp"`
	H  float64 `json:"h"`
	L  float64 `json:"l"`
	O  float64 `json:"o"`
	PC float64 `json:"pc"`
	T  int64   `json:"t"`
}

// Quote returns the realtime quote for a symbol.
func (c *RESTClient) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	var resp quoteResponse
	if err := c.get(ctx, "quote", map[string][]string{"symbol": {symbol}}, &resp); err != nil {
		return nil, fmt.Errorf("finnhub quote %s: %w", symbol, err)
	}
	return &models.Quote{
		Symbol:        symbol,
		CurrentPrice:  resp.C,
		Change:        resp.D,
		PercentChange: resp.DP,
		High:          resp.H,
		Low:           resp.L,
		Open:          resp.O,
		PreviousClose: resp.PC,
		Timestamp:     time.Unix(resp.T, 0),
	}, nil
}

type profileResponse struct {
	Name              string  `json:"name"`
	Ticker            string  `json:"ticker"`
	Exchange          string  `json:"exchange"`
	FinnhubIndustry   string  `json:"finnhubIndustry"`
	MarketCap         float64 `json:"marketCapitalization"`
	SharesOutstanding float64 `json:"shareOutstanding"`
	WebURL            string  `json:"weburl"`
	IPO               string  `json:"ipo"`
}

// Profile returns company reference data.
func (c *RESTClient) Profile(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	var resp profileResponse
	if err := c.get(ctx, "stock/profile2", map[string][]string{"symbol": {symbol}}, &resp); err != nil {
		return nil, fmt.Errorf("finnhub profile %s: %w", symbol, err)
	}
	return &models.CompanyProfile{
		Name:              resp.Name,
		Ticker:            resp.Ticker,
		Exchange:          resp.Exchange,
		Industry:          resp.FinnhubIndustry,
		MarketCap:         resp.MarketCap,
		SharesOutstanding: resp.SharesOutstanding,
		Website:           resp.WebURL,
		IPODate:           resp.IPO,
	}, nil
}

type recommendationEntry struct {
	Buy        int    `json:"buy"`
	Hold       int    `json:"hold"`
	Sell       int    `json:"sell"`
	StrongBuy  int    `json:"strongBuy"`
	StrongSell int    `json:"strongSell"`
	Period     string `json:"period"`
}

// Recommendation returns the most recent analyst recommendation breakdown.
func (c *RESTClient) Recommendation(ctx context.Context, symbol string) (*models.Recommendation, error) {
	var resp []recommendationEntry
	if err := c.get(ctx, "stock/recommendation", map[string][]string{"symbol": {symbol}}, &resp); err != nil {
		return nil, fmt.Errorf("finnhub recommendation %s: %w", symbol, err)
	}
	if len(resp) == 0 {
		return nil, nil
	}
	latest := resp[0]
	return &models.Recommendation{
		Buy:        latest.Buy,
		Hold:       latest.Hold,
		Sell:       latest.Sell,
		StrongBuy:  latest.StrongBuy,
		StrongSell: latest.StrongSell,
		Period:     latest.Period,
	}, nil
}

type earningsEntry struct {
	Actual          float64 `json:"actual"`
	Estimate        float64 `json:"estimate"`
	Surprise        float64 `json:"surprise"`
	SurprisePercent float64 `json:"surprisePercent"`
	Period          string  `json:"period"`
}

// Earnings returns the latest reported earnings surprise.
func (c *RESTClient) Earnings(ctx context.Context, symbol string) (*models.EarningsSurprise, error) {
	var resp []earningsEntry
	if err := c.get(ctx, "stock/earnings", map[string][]string{"symbol": {symbol}}, &resp); err != nil {
		return nil, fmt.Errorf("finnhub earnings %s: %w", symbol, err)
	}
	if len(resp) == 0 {
		return nil, nil
	}
	latest := resp[0]
	return &models.EarningsSurprise{
		Actual:          latest.Actual,
		Estimate:        latest.Estimate,
		Surprise:        latest.Surprise,
		SurprisePercent: latest.SurprisePercent,
		Period:          latest.Period,
	}, nil
}

type insiderSentimentResponse struct {
	Data []struct {
		MSPR   float64 `json:"mspr"`
		Change float64 `json:"change"`
		Month  int     `json:"month"`
		Year   int     `json:"year"`
	} `json:"data"`
}

// InsiderSentiment returns the latest monthly share purchase ratio over the
// trailing 90 days.
func (c *RESTClient) InsiderSentiment(ctx context.Context, symbol string) (*models.InsiderSentiment, error) {
	now := time.Now()
	params := map[string][]string{
		"symbol": {symbol},
		"from":   {now.AddDate(0, 0, -90).Format("2006-01-02")},
		"to":     {now.Format("2006-01-02")},
	}

	var resp insiderSentimentResponse
	if err := c.get(ctx, "stock/insider-sentiment", params, &resp); err != nil {
		return nil, fmt.Errorf("finnhub insider sentiment %s: %w", symbol, err)
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	latest := resp.Data[len(resp.Data)-1]
	return &models.InsiderSentiment{
		MSPR:   latest.MSPR,
		Change: latest.Change,
		Month:  latest.Month,
		Year:   latest.Year,
	}, nil
}

type newsEntry struct {
	Headline string `json:"headline"`
	Source   string `json:"source"`
	URL      string `json:"url"`
	Datetime int64  `json:"datetime"`
}

// CompanyNews returns recent headlines for a symbol (trailing 7 days).
func (c *RESTClient) CompanyNews(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error) {
	now := time.Now()
	params := map[string][]string{
		"symbol": {symbol},
		"from":   {now.AddDate(0, 0, -7).Format("2006-01-02")},
		"to":     {now.Format("2006-01-02")},
	}

	var resp []newsEntry
	if err := c.get(ctx, "company-news", params, &resp); err != nil {
		return nil, fmt.Errorf("finnhub company news %s: %w", symbol, err)
	}

	if limit <= 0 || limit > len(resp) {
		limit = len(resp)
	}
	items := make([]models.NewsItem, 0, limit)
	for _, n := range resp[:limit] {
		items = append(items, models.NewsItem{
			Title:     n.Headline,
			Publisher: n.Source,
			Link:      n.URL,
			Published: time.Unix(n.Datetime, 0).Format("2006-01-02"),
		})
	}
	return items, nil
}
