package fx

import (
	"context"

	"cs2-tracker/internal/api"
	"cs2-tracker/internal/browser"
	"cs2-tracker/internal/config"
	"cs2-tracker/internal/database"
	"cs2-tracker/internal/logger"
	"cs2-tracker/internal/metrics"
	"cs2-tracker/internal/repository"
	"cs2-tracker/internal/server"
	"cs2-tracker/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvidePipeline(
	cfg *config.Config,
	faceit *api.FaceitClient,
	leetify *api.LeetifyClient,
	players *repository.PlayerRepository,
	stats *repository.PlayerStatsRepository,
	matches *repository.MatchRepository,
	m *metrics.Metrics,
	log zerolog.Logger,
) *service.Pipeline {
	newSession := func(ctx context.Context) (service.ScrapeSession, error) {
		return browser.NewSession(ctx, log)
	}
	return service.NewPipeline(cfg, faceit, leetify, newSession, players, stats, matches, m, log)
}

func ProvideAnalysis(
	matches *repository.MatchRepository,
	stats *repository.PlayerStatsRepository,
	log zerolog.Logger,
) *service.Analysis {
	return service.NewAnalysis(matches, stats, log)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Invoke(func(cfg *config.Config) { logger.SetLevel(cfg.LogLevel) }),
	fx.Provide(database.New),
	fx.Provide(metrics.New),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewPlayerStatsRepository),
	fx.Provide(repository.NewMatchRepository),
	// api clients
	fx.Provide(api.NewFaceitClient),
	fx.Provide(api.NewLeetifyClient),
	// svc
	fx.Provide(ProvidePipeline),
	fx.Provide(ProvideAnalysis),
	// server
	fx.Provide(server.NewStatsServer),
)
