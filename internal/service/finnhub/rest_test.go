package finnhub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *RESTClient) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(srv.Close)
	return srv, NewRESTClient("test-token", srv.URL)
}

func TestQuote(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quote" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("token") != "test-token" {
			t.Errorf("token = %s", r.URL.Query().Get("token"))
		}
		if r.URL.Query().Get("symbol") != "AAPL" {
			t.Errorf("symbol = %s", r.URL.Query().Get("symbol"))
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"c": 185.5, "d": 2.1, "dp": 1.15, "h": 186.0, "l": 183.2, "o": 184.0, "pc": 183.4, "t": 1717200000,
		})
	})

	q, err := client.Quote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if q.CurrentPrice != 185.5 || q.PreviousClose != 183.4 {
		t.Errorf("quote = %+v", q)
	}
	if q.Symbol != "AAPL" {
		t.Errorf("symbol = %s", q.Symbol)
	}
}

func TestQuoteNoAPIKey(t *testing.T) {
	client := NewRESTClient("", "http://localhost:1")
	if _, err := client.Quote(context.Background(), "AAPL"); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestProfile(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stock/profile2" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"name": "Apple Inc", "ticker": "AAPL", "exchange": "NASDAQ",
			"finnhubIndustry": "Technology", "marketCapitalization": 2800000.0,
		})
	})

	p, err := client.Profile(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.Name != "Apple Inc" || p.Industry != "Technology" {
		t.Errorf("profile = %+v", p)
	}
}

func TestRecommendationEmpty(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	})

	rec, err := client.Recommendation(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Recommendation: %v", err)
	}
	if rec != nil {
		t.Errorf("rec = %+v, want nil for empty response", rec)
	}
}

func TestRecommendationLatestFirst(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"buy":20,"hold":5,"sell":1,"period":"2025-06-01"},{"buy":18,"hold":6,"sell":2,"period":"2025-05-01"}]`))
	})

	rec, err := client.Recommendation(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Recommendation: %v", err)
	}
	if rec.Buy != 20 || rec.Period != "2025-06-01" {
		t.Errorf("rec = %+v, want the first (latest) entry", rec)
	}
}

func TestCompanyNewsLimit(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"headline":"first","source":"a","url":"u1","datetime":1717200000},
			{"headline":"second","source":"b","url":"u2","datetime":1717100000},
			{"headline":"third","source":"c","url":"u3","datetime":1717000000}
		]`))
	})

	items, err := client.CompanyNews(context.Background(), "AAPL", 2)
	if err != nil {
		t.Fatalf("CompanyNews: %v", err)
	}
	if len(items) != 2 || items[0].Title != "first" {
		t.Errorf("items = %+v", items)
	}
}

func TestInsiderSentimentLatestMonth(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("from") == "" || r.URL.Query().Get("to") == "" {
			t.Error("missing from/to range")
		}
		w.Write([]byte(`{"data":[{"mspr":-10.5,"change":-1000,"month":4,"year":2025},{"mspr":12.3,"change":5000,"month":5,"year":2025}]}`))
	})

	is, err := client.InsiderSentiment(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("InsiderSentiment: %v", err)
	}
	if is.MSPR != 12.3 || is.Month != 5 {
		t.Errorf("sentiment = %+v, want the last entry", is)
	}
}
