package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"StockSage/internal/usecase"
	"StockSage/pkg/cache"
	pkgch "StockSage/pkg/clickhouse"
	"StockSage/pkg/config"
	xhttp "StockSage/pkg/http"
	pkgkafka "StockSage/pkg/kafka"
	applogger "StockSage/pkg/logger"
)

// App owns the long-running pieces: the HTTP server, the optional market
// stream collector, and the optional background request consumer.
type App struct {
	cfg       *config.Config
	log       *applogger.Logger
	handler   xhttp.Handler
	collector *usecase.QuoteCollector
	consumer  *pkgkafka.Consumer
	requests  *usecase.AnalysisRequestsHandler
	chClient  *pkgch.Client
	producer  *pkgkafka.Producer
	cache     cache.Service

	httpServer *xhttp.Server
}

// New creates the application. Collector, consumer, ClickHouse client, and
// producer may be nil when the corresponding integration is disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	collector *usecase.QuoteCollector,
	consumer *pkgkafka.Consumer,
	requests *usecase.AnalysisRequestsHandler,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	cacheSvc cache.Service,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		handler:   handler,
		collector: collector,
		consumer:  consumer,
		requests:  requests,
		chClient:  chClient,
		producer:  producer,
		cache:     cacheSvc,
	}
}

// Run starts every enabled component and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.log),
	)

	if a.collector != nil {
		if err := a.collector.Start(ctx); err != nil {
			a.log.Error("quote collector start failed", applogger.Error(err))
		} else {
			a.log.Info("quote collector started", applogger.Strings("symbols", a.cfg.Finnhub.Symbols))
		}
	}

	if a.consumer != nil && a.requests != nil {
		a.consumer.RegisterHandler(a.requests)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("kafka consumer started", applogger.String("topic", a.requests.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown stops components in reverse order of startup.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.collector != nil {
		if err := a.collector.Stop(); err != nil {
			a.log.Warn("quote collector stop error", applogger.Error(err))
		}
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Warn("kafka producer close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
