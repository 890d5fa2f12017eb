package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCandles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/AAPL" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("interval"); got != "1d" {
			t.Fatalf("interval = %s", got)
		}
		w.Write([]byte(`{"chart":{"result":[{
			"meta":{"symbol":"AAPL","regularMarketPrice":190.5},
			"timestamp":[1700000000,1700086400,1700172800],
			"indicators":{"quote":[{
				"open":[188.0,189.0,190.0],
				"high":[189.5,190.5,191.5],
				"low":[187.0,188.0,189.0],
				"close":[189.0,190.0,0],
				"volume":[1000,2000,3000]
			}]}
		}],"error":null}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	candles, err := c.Candles(context.Background(), "AAPL", 30)
	if err != nil {
		t.Fatalf("Candles: %v", err)
	}

	// The third bar has a zero close and must be dropped.
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}
	if candles[0].Close != 189.0 || candles[0].Volume != 1000 {
		t.Fatalf("unexpected first candle: %+v", candles[0])
	}
	if candles[1].Timestamp != 1700086400 {
		t.Fatalf("unexpected timestamp %d", candles[1].Timestamp)
	}
}

func TestCandlesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Candles(context.Background(), "BOGUS", 30); err == nil {
		t.Fatal("expected error for upstream error payload")
	}
}

func TestFinancials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteSummary":{"result":[{
			"financialData":{
				"totalRevenue":{"raw":383000000000},
				"profitMargins":{"raw":0.25},
				"currentPrice":{"raw":190.5},
				"targetMeanPrice":{"raw":210.0},
				"recommendationKey":"buy"
			},
			"defaultKeyStatistics":{
				"forwardPE":{"raw":27.5},
				"trailingEps":{"raw":6.42}
			},
			"summaryDetail":{
				"marketCap":{"raw":2950000000000},
				"trailingPE":{"raw":29.7}
			}
		}],"error":null}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	f, err := c.Financials(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Financials: %v", err)
	}
	if f.MarketCap != 2950000000000 {
		t.Fatalf("MarketCap = %v", f.MarketCap)
	}
	if f.Recommendation != "buy" {
		t.Fatalf("Recommendation = %q", f.Recommendation)
	}
	if f.EPS != 6.42 || f.ForwardPE != 27.5 {
		t.Fatalf("stats fields: %+v", f)
	}
}

func TestNews(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "TSLA" {
			t.Fatalf("q = %s", got)
		}
		w.Write([]byte(`{"news":[
			{"title":"Tesla beats estimates","publisher":"Reuters","link":"https://example.com/1","providerPublishTime":1700000000},
			{"title":"Deliveries up","publisher":"Bloomberg","link":"https://example.com/2","providerPublishTime":1700086400}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	items, err := c.News(context.Background(), "TSLA", 5)
	if err != nil {
		t.Fatalf("News: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Publisher != "Reuters" {
		t.Fatalf("publisher = %q", items[0].Publisher)
	}
}

func TestSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteSummary":{"result":[{
			"price":{
				"shortName":"Bitcoin USD",
				"regularMarketPrice":{"raw":64000.5},
				"marketCap":{"raw":1260000000000},
				"circulatingSupply":{"raw":19700000},
				"regularMarketChangePercent":{"raw":0.023}
			},
			"summaryDetail":{
				"volume24Hr":{"raw":31000000000},
				"dayHigh":{"raw":65000},
				"dayLow":{"raw":63000},
				"fiftyTwoWeekHigh":{"raw":73000},
				"fiftyTwoWeekLow":{"raw":38000}
			}
		}],"error":null}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	snap, err := c.Snapshot(context.Background(), "BTC-USD")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Name != "Bitcoin USD" || snap.CurrentPrice != 64000.5 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.ChangePercent24h < 2.29 || snap.ChangePercent24h > 2.31 {
		t.Fatalf("ChangePercent24h = %v", snap.ChangePercent24h)
	}
}
