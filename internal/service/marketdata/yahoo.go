// Package marketdata fetches price history, fundamentals, and crypto
// snapshots from the Yahoo Finance public endpoints. It is the source for
// everything Finnhub's free tier does not cover: daily candles, valuation
// metrics, and crypto market data.
package marketdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"StockSage/internal/domain/models"
	xhttp "StockSage/pkg/http"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Client calls the Yahoo Finance chart and quoteSummary APIs.
type Client struct {
	baseURL string
	http    *xhttp.Client
}

// NewClient creates a market data client. An empty baseURL uses the public
// endpoints.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    xhttp.NewClient(xhttp.WithTimeout(15 * time.Second)),
	}
}

var browserHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36",
	"Accept":     "application/json",
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Candles returns daily OHLCV bars covering the trailing number of days.
func (c *Client) Candles(ctx context.Context, symbol string, days int) ([]models.Candle, error) {
	if days <= 0 {
		days = 30
	}

	var resp chartResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  "GET",
		URL:     fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, symbol),
		Headers: browserHeaders,
		QueryParams: map[string][]string{
			"range":    {rangeParam(days)},
			"interval": {"1d"},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", symbol, err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart %s: %s", symbol, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart %s: empty result", symbol)
	}

	result := resp.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	candles := make([]models.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == 0 {
			continue
		}
		candles = append(candles, models.Candle{
			Timestamp: ts,
			Open:      at(quote.Open, i),
			High:      at(quote.High, i),
			Low:       at(quote.Low, i),
			Close:     quote.Close[i],
			Volume:    at(quote.Volume, i),
		})
	}

	return candles, nil
}

func at(s []float64, i int) float64 {
	if i < len(s) {
		return s[i]
	}
	return 0
}

func rangeParam(days int) string {
	switch {
	case days <= 5:
		return "5d"
	case days <= 31:
		return "1mo"
	case days <= 93:
		return "3mo"
	case days <= 186:
		return "6mo"
	default:
		return "1y"
	}
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []map[string]map[string]interface{} `json:"result"`
		Error  *struct {
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

func (c *Client) quoteSummary(ctx context.Context, symbol string, modules string) (map[string]map[string]interface{}, error) {
	var resp quoteSummaryResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  "GET",
		URL:     fmt.Sprintf("%s/v10/finance/quoteSummary/%s", c.baseURL, symbol),
		Headers: browserHeaders,
		QueryParams: map[string][]string{
			"modules": {modules},
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("%s", resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("empty result")
	}
	return resp.QuoteSummary.Result[0], nil
}

// rawNum extracts a numeric field that Yahoo wraps as {"raw": N, "fmt": "..."}.
func rawNum(module map[string]interface{}, key string) float64 {
	field, ok := module[key].(map[string]interface{})
	if !ok {
		return 0
	}
	v, _ := field["raw"].(float64)
	return v
}

func rawStr(module map[string]interface{}, key string) string {
	s, _ := module[key].(string)
	return s
}

// Financials returns valuation and profitability metrics for an equity.
func (c *Client) Financials(ctx context.Context, symbol string) (*models.Financials, error) {
	result, err := c.quoteSummary(ctx, symbol, "financialData,defaultKeyStatistics,summaryDetail")
	if err != nil {
		return nil, fmt.Errorf("financials %s: %w", symbol, err)
	}

	fin := result["financialData"]
	stats := result["defaultKeyStatistics"]
	detail := result["summaryDetail"]

	f := &models.Financials{
		MarketCap:       rawNum(detail, "marketCap"),
		Revenue:         rawNum(fin, "totalRevenue"),
		PERatio:         rawNum(detail, "trailingPE"),
		ForwardPE:       rawNum(stats, "forwardPE"),
		EPS:             rawNum(stats, "trailingEps"),
		ProfitMargin:    rawNum(fin, "profitMargins"),
		OperatingMargin: rawNum(fin, "operatingMargins"),
		ReturnOnEquity:  rawNum(fin, "returnOnEquity"),
		DebtToEquity:    rawNum(fin, "debtToEquity"),
		CurrentPrice:    rawNum(fin, "currentPrice"),
		TargetMeanPrice: rawNum(fin, "targetMeanPrice"),
		Recommendation:  rawStr(fin, "recommendationKey"),
	}

	return f, nil
}

// Statements renders the most recent financial statements as text blocks
// for the fundamentals analyst's prompt.
func (c *Client) Statements(ctx context.Context, symbol string) (*models.Statements, error) {
	result, err := c.quoteSummary(ctx, symbol,
		"incomeStatementHistory,balanceSheetHistory,cashflowStatementHistory")
	if err != nil {
		return nil, fmt.Errorf("statements %s: %w", symbol, err)
	}

	render := func(module map[string]interface{}, listKey string, fields map[string]string) string {
		list, ok := module[listKey].([]interface{})
		if !ok || len(list) == 0 {
			return "N/A"
		}
		entry, ok := list[0].(map[string]interface{})
		if !ok {
			return "N/A"
		}
		var sb strings.Builder
		for label, key := range fields {
			if v := rawNum(entry, key); v != 0 {
				fmt.Fprintf(&sb, "%s: %s\n", label, models.FormatMoney(v))
			}
		}
		if sb.Len() == 0 {
			return "N/A"
		}
		return sb.String()
	}

	return &models.Statements{
		IncomeStatement: render(result["incomeStatementHistory"], "incomeStatementHistory", map[string]string{
			"Total Revenue":    "totalRevenue",
			"Gross Profit":     "grossProfit",
			"Operating Income": "operatingIncome",
			"Net Income":       "netIncome",
		}),
		BalanceSheet: render(result["balanceSheetHistory"], "balanceSheetStatements", map[string]string{
			"Total Assets":      "totalAssets",
			"Total Liabilities": "totalLiab",
			"Total Equity":      "totalStockholderEquity",
			"Cash":              "cash",
		}),
		CashFlow: render(result["cashflowStatementHistory"], "cashflowStatements", map[string]string{
			"Operating Cash Flow": "totalCashFromOperatingActivities",
			"Capital Expenditure": "capitalExpenditures",
			"Net Income":          "netIncome",
		}),
	}, nil
}

type searchResponse struct {
	News []struct {
		Title               string `json:"title"`
		Publisher           string `json:"publisher"`
		Link                string `json:"link"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}

// News returns recent headlines for a symbol.
func (c *Client) News(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error) {
	if limit <= 0 {
		limit = 5
	}

	var resp searchResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  "GET",
		URL:     c.baseURL + "/v1/finance/search",
		Headers: browserHeaders,
		QueryParams: map[string][]string{
			"q":           {symbol},
			"newsCount":   {fmt.Sprintf("%d", limit)},
			"quotesCount": {"0"},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("news %s: %w", symbol, err)
	}

	items := make([]models.NewsItem, 0, len(resp.News))
	for _, n := range resp.News {
		if len(items) >= limit {
			break
		}
		items = append(items, models.NewsItem{
			Title:     n.Title,
			Publisher: n.Publisher,
			Link:      n.Link,
			Published: time.Unix(n.ProviderPublishTime, 0).Format("2006-01-02"),
		})
	}

	return items, nil
}

// Snapshot returns crypto market data for a quoted pair such as BTC-USD.
func (c *Client) Snapshot(ctx context.Context, symbol string) (*models.CryptoSnapshot, error) {
	result, err := c.quoteSummary(ctx, symbol, "price,summaryDetail")
	if err != nil {
		return nil, fmt.Errorf("crypto snapshot %s: %w", symbol, err)
	}

	price := result["price"]
	detail := result["summaryDetail"]

	return &models.CryptoSnapshot{
		Name:              rawStr(price, "shortName"),
		Symbol:            symbol,
		CurrentPrice:      rawNum(price, "regularMarketPrice"),
		MarketCap:         rawNum(price, "marketCap"),
		Volume24h:         rawNum(detail, "volume24Hr"),
		CirculatingSupply: rawNum(price, "circulatingSupply"),
		DayHigh:           rawNum(detail, "dayHigh"),
		DayLow:            rawNum(detail, "dayLow"),
		Week52High:        rawNum(detail, "fiftyTwoWeekHigh"),
		Week52Low:         rawNum(detail, "fiftyTwoWeekLow"),
		ChangePercent24h:  rawNum(price, "regularMarketChangePercent") * 100,
	}, nil
}
