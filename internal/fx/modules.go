package fx

import (
	"ggst-replays/internal/api"
	"ggst-replays/internal/config"
	"ggst-replays/internal/database"
	"ggst-replays/internal/logger"
	"ggst-replays/internal/repository"
	"ggst-replays/internal/server"
	"ggst-replays/internal/service"

	"go.uber.org/fx"
)

// ProvideReplayStore returns nil when persistence is switched off, which the
// replay service treats as "do not store".
func ProvideReplayStore(cfg *config.Config, repo *repository.ReplayRepository) service.ReplayStore {
	if !cfg.PersistReplays {
		return nil
	}
	return repo
}

func ProvideRecentReplays(repo *repository.ReplayRepository) server.RecentReplays {
	return repo
}

// Core is everything needed to collect replays, without the HTTP surface.
var Core = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewReplayRepository),
	fx.Provide(ProvideReplayStore),
	// api client
	fx.Provide(
		fx.Annotate(
			api.NewGGSTClient,
			fx.As(new(service.CatalogFetcher)),
			fx.As(new(service.UserDirectory)),
		),
	),
	// svc
	fx.Provide(service.NewReplayService),
	fx.Provide(service.NewUserService),
)

var Module = fx.Options(
	Core,
	fx.Provide(ProvideRecentReplays),
	// server
	fx.Provide(server.NewCatalogServer),
)
