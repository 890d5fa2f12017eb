package tickers

import "testing"

func TestExtractDirectTicker(t *testing.T) {
	got := Extract("วิเคราะห์ AAPL ให้หน่อย")
	if got != "AAPL" {
		t.Fatalf("expected AAPL, got %q", got)
	}
}

func TestExtractSkipsCommonWords(t *testing.T) {
	got := Extract("please BUY some STOCK for me NVDA")
	if got != "NVDA" {
		t.Fatalf("expected NVDA, got %q", got)
	}
}

func TestExtractCompanyName(t *testing.T) {
	got := Extract("ดูหุ้น Tesla หน่อย")
	if got != "TSLA" {
		t.Fatalf("expected TSLA, got %q", got)
	}
}

func TestExtractCryptoName(t *testing.T) {
	got := Extract("ราคา bitcoin วันนี้")
	if got != "BTC" {
		t.Fatalf("expected BTC, got %q", got)
	}
}

func TestExtractTwoLetterRequiresKnown(t *testing.T) {
	if got := Extract("is it up"); got != "" {
		t.Fatalf("expected no ticker, got %q", got)
	}
	if got := Extract("look at GE today"); got != "GE" {
		t.Fatalf("expected GE, got %q", got)
	}
}

func TestExtractEmpty(t *testing.T) {
	if got := Extract(""); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestNormalizeTypos(t *testing.T) {
	cases := map[string]string{
		"APPL":  "AAPL",
		"goog":  "GOOGL",
		"FB":    "META",
		"btc":   "BTC-USD",
		"TESLA": "TSLA",
		"MSFT":  "MSFT",
		"ZOOM":  "ZM",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsCrypto(t *testing.T) {
	if !IsCrypto("BTC") {
		t.Fatalf("BTC should be crypto")
	}
	if !IsCrypto("eth-usd") {
		t.Fatalf("eth-usd should be crypto")
	}
	if IsCrypto("AAPL") {
		t.Fatalf("AAPL should not be crypto")
	}
	if IsCrypto("") {
		t.Fatalf("empty should not be crypto")
	}
}

func TestBase(t *testing.T) {
	if got := Base("BTC-USD"); got != "BTC" {
		t.Fatalf("expected BTC, got %q", got)
	}
	if got := Base("sol"); got != "SOL" {
		t.Fatalf("expected SOL, got %q", got)
	}
}
