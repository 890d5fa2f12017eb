//go:build wireinject
// +build wireinject

package di

import (
	"StockSage/pkg/config"
	"StockSage/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation in wire_gen.go.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,

		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		ProvideAnalysisStore,
		ProvidePublisher,
		ProvideSessionStore,
		ProvideTTLConfig,
		ProvideMarketData,
		ProvideFundamentals,
		ProvideSentiment,
		ProvideCryptoData,
		ProvideSearcher,

		ProvideLLMClient,
		ProvideTeam,
		ProvideOrchestrator,
		ProvideChatService,
		ProvideRequestsHandler,
		ProvideQuoteCollector,
		ProvideHTTPHandler,

		ProvideApp,
	)
	return &server.App{}, nil
}
