package usecase

import (
	"context"
	"time"

	"StockSage/internal/domain/models"
	"StockSage/internal/domain/repository"
	"StockSage/pkg/cache"
	applogger "StockSage/pkg/logger"
	"StockSage/pkg/metrics"
)

const tickCacheTTL = 2 * time.Minute

// QuoteCollector consumes the realtime market stream, keeps the last-price
// gauge fresh, and caches the latest tick per symbol so analyses read a
// recent price even between REST quote refreshes.
type QuoteCollector struct {
	stream repository.MarketStream
	cache  cache.Service
	rec    *metrics.Recorder
	log    *applogger.Logger
}

func NewQuoteCollector(stream repository.MarketStream, c cache.Service, rec *metrics.Recorder, log *applogger.Logger) *QuoteCollector {
	return &QuoteCollector{stream: stream, cache: c, rec: rec, log: log}
}

func (c *QuoteCollector) Start(ctx context.Context) error {
	if err := c.stream.Start(ctx); err != nil {
		return err
	}
	go c.consume(ctx)
	return nil
}

func (c *QuoteCollector) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-c.stream.Ticks():
			if !ok {
				return
			}
			c.record(ctx, t)
		}
	}
}

// record refreshes the quote cache entry the market data repository reads,
// so analyses started between REST refreshes see the streamed price. An
// existing cached quote keeps its session fields; only price, change and
// timestamp move with the tick.
func (c *QuoteCollector) record(ctx context.Context, t models.Tick) {
	c.rec.RecordLastPrice(t.Symbol, t.Price)

	key := cache.Key("quote", t.Symbol)
	q := &models.Quote{}
	if err := c.cache.Get(ctx, key, &q); err != nil || q == nil {
		q = &models.Quote{Symbol: t.Symbol}
	}
	q.CurrentPrice = t.Price
	q.Timestamp = time.Unix(t.Timestamp, 0)
	if q.PreviousClose > 0 {
		q.Change = t.Price - q.PreviousClose
		q.PercentChange = q.Change / q.PreviousClose * 100
	}

	if err := c.cache.Set(ctx, key, q, tickCacheTTL); err != nil {
		c.rec.RecordError("tick_cache")
		c.log.Warn("caching tick failed",
			applogger.String("symbol", t.Symbol),
			applogger.Error(err),
		)
	}
}

func (c *QuoteCollector) Stop() error { return c.stream.Close() }
