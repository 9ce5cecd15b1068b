//go:build wireinject
// +build wireinject

package di

import (
	"FxPulse/pkg/config"
	"FxPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,

		// Collection
		ProvideHTTPClient,
		ProvideLimiter,
		ProvideSources,
		ProvideNormalizer,
		ProvideOrchestrator,

		// Scoring
		ProvideAggregator,
		ProvidePowerEngine,

		// Backend and sink
		ProvideBackend,
		ProvideEventProcessor,
		ProvideEventPipeline,
		ProvideSinkHandler,

		// Use cases and application server
		ProvideCycle,
		ProvideHTTPServer,
		ProvideApp,
	)
	return &server.App{}, nil
}
