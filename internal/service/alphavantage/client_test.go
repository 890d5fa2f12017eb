package alphavantage

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(srv.Close)
	return NewClient("test-key", srv.URL)
}

func TestRSILatestReading(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("function") != "RSI" || q.Get("time_period") != "14" {
			t.Errorf("query = %v", q)
		}
		if q.Get("apikey") != "test-key" {
			t.Errorf("apikey = %s", q.Get("apikey"))
		}
		fmt.Fprint(w, `{"Technical Analysis: RSI": {
			"2025-06-02": {"RSI": "65.4321"},
			"2025-06-03": {"RSI": "71.0000"}
		}}`)
	})

	rsi, err := client.RSI(context.Background(), "AAPL", 14)
	if err != nil {
		t.Fatalf("RSI: %v", err)
	}
	if rsi.Date != "2025-06-03" {
		t.Errorf("date = %s, want newest", rsi.Date)
	}
	if rsi.RSI != 71.0 {
		t.Errorf("rsi = %v", rsi.RSI)
	}
}

func TestMACDReading(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Technical Analysis: MACD": {
			"2025-06-03": {"MACD": "1.2500", "MACD_Signal": "1.1000", "MACD_Hist": "0.1500"}
		}}`)
	})

	m, err := client.MACD(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("MACD: %v", err)
	}
	if m.MACD != 1.25 || m.Signal != 1.1 || m.Histogram != 0.15 {
		t.Errorf("macd = %+v", m)
	}
}

func TestSMAReading(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("time_period") != "50" {
			t.Errorf("time_period = %s", r.URL.Query().Get("time_period"))
		}
		fmt.Fprint(w, `{"Technical Analysis: SMA": {
			"2025-06-03": {"SMA": "182.4000"}
		}}`)
	})

	s, err := client.SMA(context.Background(), "AAPL", 50)
	if err != nil {
		t.Fatalf("SMA: %v", err)
	}
	if s.SMA != 182.4 || s.Period != 50 {
		t.Errorf("sma = %+v", s)
	}
}

func TestRSIEmptySeries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Technical Analysis: RSI": {}}`)
	})

	rsi, err := client.RSI(context.Background(), "AAPL", 14)
	if err != nil {
		t.Fatalf("RSI: %v", err)
	}
	if rsi != nil {
		t.Errorf("reading = %+v, want nil on empty series", rsi)
	}
}

func TestRateLimitNote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`)
	})

	_, err := client.MACD(context.Background(), "AAPL")
	if err == nil || !strings.Contains(err.Error(), "rate limit") {
		t.Fatalf("err = %v, want rate limit error", err)
	}
}

func TestNoAPIKey(t *testing.T) {
	client := NewClient("", "")
	if _, err := client.RSI(context.Background(), "AAPL", 14); err == nil {
		t.Fatal("expected error without api key")
	}
}
