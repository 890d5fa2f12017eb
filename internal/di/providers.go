package di

import (
	"context"
	"fmt"
	"time"

	"StockSage/internal/agents"
	"StockSage/internal/domain/repository"
	"StockSage/internal/handler/api"
	internalrepo "StockSage/internal/repository"
	"StockSage/internal/service/alphavantage"
	"StockSage/internal/service/finnhub"
	"StockSage/internal/service/llm"
	"StockSage/internal/service/marketdata"
	"StockSage/internal/service/tavily"
	"StockSage/internal/usecase"
	"StockSage/pkg/cache"
	pkgch "StockSage/pkg/clickhouse"
	"StockSage/pkg/config"
	xhttp "StockSage/pkg/http"
	pkgkafka "StockSage/pkg/kafka"
	applogger "StockSage/pkg/logger"
	"StockSage/pkg/metrics"
	"StockSage/pkg/server"
)

// ProvideLogger builds the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics returns the process-wide Prometheus recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideCache selects Redis when enabled, otherwise the in-process cache.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	c, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, nil
}

// ProvideClickHouseClient connects to ClickHouse and creates the analysis
// tables. Returns nil when the store is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.AnalysisSchema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideAnalysisStore wraps ClickHouse or falls back to a no-op store so
// the pipeline keeps working without persistence.
func ProvideAnalysisStore(ch *pkgch.Client) repository.AnalysisStore {
	if ch == nil {
		return internalrepo.NoopAnalysisStore{}
	}
	return internalrepo.NewClickHouseAnalysisStore(ch)
}

// ProvideKafkaProducer creates the producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatch(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.Linger),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePublisher keys completed-analysis events by ticker.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return internalrepo.NoopPublisher{}
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.AnalysesTopic)
}

// ProvideKafkaConsumer builds the requests consumer, or nil when disabled.
func ProvideKafkaConsumer(cfg *config.Config, log *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(log,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideLLMClient initializes the shared chat model.
func ProvideLLMClient(cfg *config.Config, log *applogger.Logger) (*llm.Client, error) {
	return llm.NewClient(context.Background(), &llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
		RPM:         cfg.LLM.RPM,
		QPS:         cfg.LLM.QPS,
		MaxRetries:  cfg.LLM.MaxRetries,
	}, log)
}

// ProvideTeam builds the agent roster around the shared chat model.
func ProvideTeam(llmClient *llm.Client, log *applogger.Logger, rec *metrics.Recorder) *agents.Team {
	return agents.NewTeam(llmClient, log, rec)
}

// ProvideTTLConfig maps cache config to provider TTLs.
func ProvideTTLConfig(cfg *config.Config) *internalrepo.TTLConfig {
	return &internalrepo.TTLConfig{
		Quote:      cfg.Cache.QuoteTTL,
		Candles:    cfg.Cache.CandlesTTL,
		Financials: cfg.Cache.FinancialsTTL,
		News:       cfg.Cache.NewsTTL,
	}
}

// ProvideMarketData combines Finnhub quotes with chart history.
func ProvideMarketData(cfg *config.Config, c cache.Service, ttl *internalrepo.TTLConfig, rec *metrics.Recorder, log *applogger.Logger) repository.MarketData {
	fh := finnhub.NewRESTClient(cfg.Finnhub.APIKey, cfg.Finnhub.BaseURL)
	charts := marketdata.NewClient(cfg.MarketData.BaseURL)
	return internalrepo.NewMarketDataRepo(fh, charts, c, ttl, rec, log)
}

// ProvideFundamentals uses chart fundamentals with an AlphaVantage fallback.
func ProvideFundamentals(cfg *config.Config, c cache.Service, ttl *internalrepo.TTLConfig, rec *metrics.Recorder, log *applogger.Logger) repository.FundamentalsData {
	charts := marketdata.NewClient(cfg.MarketData.BaseURL)
	alpha := alphavantage.NewClient(cfg.AlphaVantage.APIKey, cfg.AlphaVantage.BaseURL)
	return internalrepo.NewFundamentalsRepo(charts, alpha, c, ttl, rec, log)
}

// ProvideSentiment surfaces Finnhub analyst and insider data.
func ProvideSentiment(cfg *config.Config, c cache.Service, ttl *internalrepo.TTLConfig, rec *metrics.Recorder, log *applogger.Logger) repository.SentimentData {
	fh := finnhub.NewRESTClient(cfg.Finnhub.APIKey, cfg.Finnhub.BaseURL)
	return internalrepo.NewSentimentRepo(fh, c, ttl, rec, log)
}

// ProvideCryptoData serves crypto snapshots and price history.
func ProvideCryptoData(cfg *config.Config, c cache.Service, ttl *internalrepo.TTLConfig, rec *metrics.Recorder, log *applogger.Logger) repository.CryptoData {
	charts := marketdata.NewClient(cfg.MarketData.BaseURL)
	return internalrepo.NewCryptoRepo(charts, c, ttl, rec, log)
}

// ProvideSearcher wires Tavily web search.
func ProvideSearcher(cfg *config.Config, c cache.Service, ttl *internalrepo.TTLConfig, rec *metrics.Recorder, log *applogger.Logger) repository.Searcher {
	t := tavily.NewClient(cfg.Tavily.APIKey, "")
	return internalrepo.NewSearchRepo(t, c, ttl, rec, log)
}

// ProvideSessionStore caches follow-up context with the configured TTL.
func ProvideSessionStore(c cache.Service, cfg *config.Config) repository.SessionStore {
	return internalrepo.NewRedisSessionStore(c, cfg.Session.TTL)
}

// ProvideOrchestrator assembles the full pipeline.
func ProvideOrchestrator(
	team *agents.Team,
	market repository.MarketData,
	fundamentals repository.FundamentalsData,
	sentiment repository.SentimentData,
	crypto repository.CryptoData,
	search repository.Searcher,
	store repository.AnalysisStore,
	sessions repository.SessionStore,
	publisher repository.Publisher,
	rec *metrics.Recorder,
	log *applogger.Logger,
) *usecase.Orchestrator {
	return usecase.NewOrchestrator(usecase.OrchestratorDeps{
		Team:         team,
		Market:       market,
		Fundamentals: fundamentals,
		Sentiment:    sentiment,
		Crypto:       crypto,
		Search:       search,
		Store:        store,
		Sessions:     sessions,
		Publisher:    publisher,
		Recorder:     rec,
		Logger:       log,
	})
}

// ProvideChatService glues the orchestrator to the chat surface.
func ProvideChatService(orch *usecase.Orchestrator, sessions repository.SessionStore, store repository.AnalysisStore, team *agents.Team, log *applogger.Logger) *usecase.ChatService {
	return usecase.NewChatService(orch, sessions, store, team, log)
}

// ProvideRequestsHandler consumes background analysis requests.
func ProvideRequestsHandler(cfg *config.Config, orch *usecase.Orchestrator, rec *metrics.Recorder, log *applogger.Logger) *usecase.AnalysisRequestsHandler {
	return usecase.NewAnalysisRequestsHandler(cfg.Kafka.RequestsTopic, orch, rec, log)
}

// ProvideQuoteCollector builds the realtime tick collector, or nil when the
// stream is disabled.
func ProvideQuoteCollector(cfg *config.Config, c cache.Service, rec *metrics.Recorder, log *applogger.Logger) *usecase.QuoteCollector {
	if !cfg.Finnhub.StreamEnabled {
		return nil
	}
	stream := finnhub.NewStream(
		cfg.Finnhub.APIKey,
		cfg.Finnhub.WebSocketURL,
		cfg.Finnhub.Symbols,
		cfg.Finnhub.ReconnectDelay,
		cfg.Finnhub.PingInterval,
		log,
	)
	return usecase.NewQuoteCollector(stream, c, rec, log)
}

// ProvideHTTPHandler composes every API surface into one route registrar.
func ProvideHTTPHandler(chat *usecase.ChatService, store repository.AnalysisStore, log *applogger.Logger) xhttp.Handler {
	return api.NewRouter(
		api.NewChatHandler(chat, log),
		api.NewAnalysesHandler(store, log),
	)
}

// ProvideApp bundles the long-running pieces into the application.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	collector *usecase.QuoteCollector,
	consumer *pkgkafka.Consumer,
	requests *usecase.AnalysisRequestsHandler,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	cacheSvc cache.Service,
) *server.App {
	return server.New(cfg, log, handler, collector, consumer, requests, chClient, producer, cacheSvc)
}
