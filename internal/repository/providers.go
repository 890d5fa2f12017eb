// Package repository implements the domain repository interfaces: cached
// data providers over the upstream market data services, the ClickHouse
// analysis store, the Redis session store, and the Kafka event publisher.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StockSage/internal/domain/models"
	"StockSage/internal/service/alphavantage"
	"StockSage/internal/service/finnhub"
	"StockSage/internal/service/marketdata"
	"StockSage/internal/service/tavily"
	"StockSage/pkg/cache"
	applogger "StockSage/pkg/logger"
	"StockSage/pkg/metrics"
)

// TTLConfig sets provider cache lifetimes. Zero values fall back to
// defaults tuned to each source's refresh rate.
type TTLConfig struct {
	Quote      time.Duration
	Candles    time.Duration
	Financials time.Duration
	News       time.Duration
	Sentiment  time.Duration
	Search     time.Duration
}

func (c *TTLConfig) withDefaults() TTLConfig {
	out := TTLConfig{
		Quote:      time.Minute,
		Candles:    15 * time.Minute,
		Financials: 6 * time.Hour,
		News:       10 * time.Minute,
		Sentiment:  time.Hour,
		Search:     10 * time.Minute,
	}
	if c == nil {
		return out
	}
	if c.Quote > 0 {
		out.Quote = c.Quote
	}
	if c.Candles > 0 {
		out.Candles = c.Candles
	}
	if c.Financials > 0 {
		out.Financials = c.Financials
	}
	if c.News > 0 {
		out.News = c.News
	}
	if c.Sentiment > 0 {
		out.Sentiment = c.Sentiment
	}
	if c.Search > 0 {
		out.Search = c.Search
	}
	return out
}

type providerDeps struct {
	cache cache.Service
	rec   *metrics.Recorder
	log   *applogger.Logger
}

// cachedFetch returns the cached value for key when present, otherwise
// fetches, records the provider call, and caches the result. Cache failures
// never fail the fetch.
func cachedFetch[T any](ctx context.Context, d providerDeps, provider, key string, ttl time.Duration, fetch func() (T, error)) (T, error) {
	var v T
	if d.cache != nil {
		if err := d.cache.Get(ctx, key, &v); err == nil {
			return v, nil
		}
	}

	v, err := fetch()
	if err != nil {
		d.rec.RecordProviderCall(provider, "error")
		return v, err
	}
	d.rec.RecordProviderCall(provider, "ok")

	if d.cache != nil {
		if err := d.cache.Set(ctx, key, v, ttl); err != nil {
			d.log.Warn("provider cache write failed",
				applogger.String("key", key),
				applogger.Error(err),
			)
		}
	}
	return v, nil
}

// MarketDataRepo serves quotes and reference data from Finnhub and daily
// candles and headlines from the chart provider, behind a shared cache.
type MarketDataRepo struct {
	deps    providerDeps
	finnhub *finnhub.RESTClient
	charts  *marketdata.Client
	ttl     TTLConfig
}

func NewMarketDataRepo(fh *finnhub.RESTClient, charts *marketdata.Client, c cache.Service, ttl *TTLConfig, rec *metrics.Recorder, log *applogger.Logger) *MarketDataRepo {
	return &MarketDataRepo{
		deps:    providerDeps{cache: c, rec: rec, log: log},
		finnhub: fh,
		charts:  charts,
		ttl:     ttl.withDefaults(),
	}
}

func (r *MarketDataRepo) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	return cachedFetch(ctx, r.deps, "finnhub", cache.Key("quote", symbol), r.ttl.Quote,
		func() (*models.Quote, error) { return r.finnhub.Quote(ctx, symbol) })
}

func (r *MarketDataRepo) Candles(ctx context.Context, symbol string, days int) ([]models.Candle, error) {
	return cachedFetch(ctx, r.deps, "charts", cache.Key("candles", symbol, days), r.ttl.Candles,
		func() ([]models.Candle, error) { return r.charts.Candles(ctx, symbol, days) })
}

func (r *MarketDataRepo) Profile(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	return cachedFetch(ctx, r.deps, "finnhub", cache.Key("profile", symbol), r.ttl.Financials,
		func() (*models.CompanyProfile, error) { return r.finnhub.Profile(ctx, symbol) })
}

// News prefers Finnhub company news and falls back to the chart provider's
// headline search when Finnhub has nothing.
func (r *MarketDataRepo) News(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error) {
	return cachedFetch(ctx, r.deps, "finnhub", cache.Key("news", symbol, limit), r.ttl.News,
		func() ([]models.NewsItem, error) {
			items, err := r.finnhub.CompanyNews(ctx, symbol, limit)
			if err == nil && len(items) > 0 {
				return items, nil
			}
			if err != nil {
				r.deps.log.Warn("finnhub news failed, falling back",
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
			return r.charts.News(ctx, symbol, limit)
		})
}

// FundamentalsRepo serves financials from the chart provider with an
// AlphaVantage overview fallback for the metrics it carries.
type FundamentalsRepo struct {
	deps   providerDeps
	charts *marketdata.Client
	alpha  *alphavantage.Client
	ttl    TTLConfig
}

func NewFundamentalsRepo(charts *marketdata.Client, alpha *alphavantage.Client, c cache.Service, ttl *TTLConfig, rec *metrics.Recorder, log *applogger.Logger) *FundamentalsRepo {
	return &FundamentalsRepo{
		deps:   providerDeps{cache: c, rec: rec, log: log},
		charts: charts,
		alpha:  alpha,
		ttl:    ttl.withDefaults(),
	}
}

func (r *FundamentalsRepo) Financials(ctx context.Context, symbol string) (*models.Financials, error) {
	return cachedFetch(ctx, r.deps, "charts", cache.Key("financials", symbol), r.ttl.Financials,
		func() (*models.Financials, error) {
			f, err := r.charts.Financials(ctx, symbol)
			if err == nil && f.MarketCap != 0 {
				return f, nil
			}
			if r.alpha == nil {
				return f, err
			}

			ov, aerr := r.alpha.CompanyOverview(ctx, symbol)
			if aerr != nil {
				if err != nil {
					return nil, err
				}
				return f, nil
			}
			r.deps.log.Info("financials served from overview fallback",
				applogger.String("symbol", symbol))
			return &models.Financials{
				PERatio:         ov.PERatio,
				EPS:             ov.EPS,
				ProfitMargin:    ov.ProfitMargin,
				OperatingMargin: ov.OperatingMargin,
				ReturnOnEquity:  ov.ReturnOnEquity,
				TargetMeanPrice: ov.AnalystTargetPrice,
			}, nil
		})
}

// Indicators assembles the 14-day RSI, MACD, and 50-day SMA from Alpha
// Vantage. Each indicator may fail independently (the free tier rate-limits
// aggressively); partial readings are cached and served, and only a full
// miss returns an error.
func (r *FundamentalsRepo) Indicators(ctx context.Context, symbol string) (*models.IndicatorReadings, error) {
	if r.alpha == nil {
		return nil, errors.New("alphavantage client not configured")
	}
	return cachedFetch(ctx, r.deps, "alphavantage", cache.Key("indicators", symbol), r.ttl.Candles,
		func() (*models.IndicatorReadings, error) {
			ind := &models.IndicatorReadings{}
			var firstErr error

			if rsi, err := r.alpha.RSI(ctx, symbol, 14); err == nil {
				ind.RSI, ind.HasRSI = rsi.RSI, true
			} else {
				firstErr = err
			}
			if macd, err := r.alpha.MACD(ctx, symbol); err == nil {
				ind.MACD = macd.MACD
				ind.MACDSignal = macd.Signal
				ind.MACDHistogram = macd.Histogram
				ind.HasMACD = true
			} else if firstErr == nil {
				firstErr = err
			}
			if sma, err := r.alpha.SMA(ctx, symbol, 50); err == nil {
				ind.SMA50, ind.HasSMA = sma.SMA, true
			} else if firstErr == nil {
				firstErr = err
			}

			if !ind.HasRSI && !ind.HasMACD && !ind.HasSMA {
				return nil, fmt.Errorf("indicators for %s: %w", symbol, firstErr)
			}
			return ind, nil
		})
}

func (r *FundamentalsRepo) Statements(ctx context.Context, symbol string) (*models.Statements, error) {
	return cachedFetch(ctx, r.deps, "charts", cache.Key("statements", symbol), r.ttl.Financials,
		func() (*models.Statements, error) { return r.charts.Statements(ctx, symbol) })
}

// SentimentRepo serves analyst and insider sentiment from Finnhub.
type SentimentRepo struct {
	deps    providerDeps
	finnhub *finnhub.RESTClient
	ttl     TTLConfig
}

func NewSentimentRepo(fh *finnhub.RESTClient, c cache.Service, ttl *TTLConfig, rec *metrics.Recorder, log *applogger.Logger) *SentimentRepo {
	return &SentimentRepo{
		deps:    providerDeps{cache: c, rec: rec, log: log},
		finnhub: fh,
		ttl:     ttl.withDefaults(),
	}
}

func (r *SentimentRepo) Recommendation(ctx context.Context, symbol string) (*models.Recommendation, error) {
	return cachedFetch(ctx, r.deps, "finnhub", cache.Key("recommendation", symbol), r.ttl.Sentiment,
		func() (*models.Recommendation, error) { return r.finnhub.Recommendation(ctx, symbol) })
}

func (r *SentimentRepo) Earnings(ctx context.Context, symbol string) (*models.EarningsSurprise, error) {
	return cachedFetch(ctx, r.deps, "finnhub", cache.Key("earnings", symbol), r.ttl.Sentiment,
		func() (*models.EarningsSurprise, error) { return r.finnhub.Earnings(ctx, symbol) })
}

func (r *SentimentRepo) InsiderSentiment(ctx context.Context, symbol string) (*models.InsiderSentiment, error) {
	return cachedFetch(ctx, r.deps, "finnhub", cache.Key("insider", symbol), r.ttl.Sentiment,
		func() (*models.InsiderSentiment, error) { return r.finnhub.InsiderSentiment(ctx, symbol) })
}

// CryptoRepo serves crypto snapshots and candles from the chart provider.
type CryptoRepo struct {
	deps   providerDeps
	charts *marketdata.Client
	ttl    TTLConfig
}

func NewCryptoRepo(charts *marketdata.Client, c cache.Service, ttl *TTLConfig, rec *metrics.Recorder, log *applogger.Logger) *CryptoRepo {
	return &CryptoRepo{
		deps:   providerDeps{cache: c, rec: rec, log: log},
		charts: charts,
		ttl:    ttl.withDefaults(),
	}
}

func (r *CryptoRepo) Snapshot(ctx context.Context, symbol string) (*models.CryptoSnapshot, error) {
	return cachedFetch(ctx, r.deps, "charts", cache.Key("crypto", symbol), r.ttl.Quote,
		func() (*models.CryptoSnapshot, error) { return r.charts.Snapshot(ctx, symbol) })
}

func (r *CryptoRepo) Candles(ctx context.Context, symbol string, days int) ([]models.Candle, error) {
	return cachedFetch(ctx, r.deps, "charts", cache.Key("candles", symbol, days), r.ttl.Candles,
		func() ([]models.Candle, error) { return r.charts.Candles(ctx, symbol, days) })
}

// SearchRepo serves cached web searches.
type SearchRepo struct {
	deps   providerDeps
	tavily *tavily.Client
	ttl    TTLConfig
}

func NewSearchRepo(t *tavily.Client, c cache.Service, ttl *TTLConfig, rec *metrics.Recorder, log *applogger.Logger) *SearchRepo {
	return &SearchRepo{
		deps:   providerDeps{cache: c, rec: rec, log: log},
		tavily: t,
		ttl:    ttl.withDefaults(),
	}
}

func (r *SearchRepo) Search(ctx context.Context, query, topic string, maxResults int) ([]models.SearchResult, error) {
	return cachedFetch(ctx, r.deps, "tavily", cache.Key("search", topic, query), r.ttl.Search,
		func() ([]models.SearchResult, error) { return r.tavily.Search(ctx, query, topic, maxResults) })
}
