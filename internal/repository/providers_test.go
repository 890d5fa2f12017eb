package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"StockSage/internal/service/alphavantage"
	"StockSage/pkg/cache"
	applogger "StockSage/pkg/logger"
	"StockSage/pkg/metrics"
)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestIndicatorsPartialFailure(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		switch r.URL.Query().Get("function") {
		case "RSI":
			fmt.Fprint(w, `{"Technical Analysis: RSI": {"2025-06-03": {"RSI": "28.5000"}}}`)
		case "MACD":
			fmt.Fprint(w, `{"Note": "rate limit"}`)
		case "SMA":
			fmt.Fprint(w, `{"Technical Analysis: SMA": {"2025-06-03": {"SMA": "182.4000"}}}`)
		default:
			t.Errorf("unexpected function %s", r.URL.Query().Get("function"))
		}
	}))
	t.Cleanup(srv.Close)

	alpha := alphavantage.NewClient("test-key", srv.URL)
	repo := NewFundamentalsRepo(nil, alpha, cache.NewMemoryCache(), nil, metrics.New(), testLogger(t))

	ind, err := repo.Indicators(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Indicators: %v", err)
	}
	if !ind.HasRSI || ind.RSI != 28.5 {
		t.Errorf("rsi = %+v", ind)
	}
	if ind.HasMACD {
		t.Error("MACD should be marked missing when its fetch fails")
	}
	if !ind.HasSMA || ind.SMA50 != 182.4 {
		t.Errorf("sma = %+v", ind)
	}

	before := atomic.LoadInt64(&calls)
	if _, err := repo.Indicators(context.Background(), "AAPL"); err != nil {
		t.Fatalf("Indicators cached: %v", err)
	}
	if atomic.LoadInt64(&calls) != before {
		t.Error("second call must be served from cache")
	}
}

func TestIndicatorsAllFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Note": "rate limit"}`)
	}))
	t.Cleanup(srv.Close)

	alpha := alphavantage.NewClient("test-key", srv.URL)
	repo := NewFundamentalsRepo(nil, alpha, cache.NewMemoryCache(), nil, metrics.New(), testLogger(t))

	if _, err := repo.Indicators(context.Background(), "AAPL"); err == nil {
		t.Fatal("expected error when every indicator fetch fails")
	}
}

func TestIndicatorsWithoutClient(t *testing.T) {
	repo := NewFundamentalsRepo(nil, nil, cache.NewMemoryCache(), nil, metrics.New(), testLogger(t))
	if _, err := repo.Indicators(context.Background(), "AAPL"); err == nil {
		t.Fatal("expected error without an alphavantage client")
	}
}
