package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/eartinityop/TG-File-streaming/internal/config"
	"github.com/eartinityop/TG-File-streaming/internal/handlers"
	"github.com/eartinityop/TG-File-streaming/internal/logger"
	"github.com/eartinityop/TG-File-streaming/internal/media"
	"github.com/eartinityop/TG-File-streaming/internal/media/providers/diskcache"
	"github.com/eartinityop/TG-File-streaming/internal/server"
	"github.com/eartinityop/TG-File-streaming/internal/telegram"
	"github.com/eartinityop/TG-File-streaming/internal/version"
)

func runServe() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideTelegramClient,
			provideCacheStore,
			provideResolver,
			provideServerHandler(handlers.NewWebhookServerHandler),
			provideServerHandler(provideMediaFileHandler),
			provideServerHandler(handlers.NewPingHandler),
			provideServer,
		),
		fx.Invoke(
			registerWebhook,
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideTelegramClient(log *slog.Logger, cfg config.Config) (*telegram.Client, error) {
	return telegram.NewClient(log, cfg.Telegram, cfg.Media.LocateTimeout())
}

func provideCacheStore(cfg config.Config) (media.Store, error) {
	provider, err := diskcache.New(cfg.Media.CacheDir, cfg.Media.DownloadTimeout())
	if err != nil {
		return nil, fmt.Errorf("init media cache: %w", err)
	}
	return provider, nil
}

func provideResolver(log *slog.Logger, client *telegram.Client, store media.Store, cfg config.Config) *media.Resolver {
	return media.NewResolver(log, client, store, cfg.Media.BaseURL, cfg.Media.SizeLimitBytes)
}

func provideMediaFileHandler(log *slog.Logger, store media.Store) *handlers.MediaFileHandler {
	return handlers.NewMediaFileHandler(log, store)
}

type serverParams struct {
	fx.In
	Logger   *slog.Logger
	Config   config.Config
	Handlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.New(params.Logger, params.Config.Server.Addr, params.Handlers)
}

func registerWebhook(lc fx.Lifecycle, client *telegram.Client, cfg config.Config) {
	lc.Append(fx.Hook{OnStart: func(ctx context.Context) error {
		return client.RegisterWebhook(ctx, cfg.Media.BaseURL)
	}})
}

func startServer(lc fx.Lifecycle, logger *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	fmt.Printf("Starting tgstream %s\n", version.GetInfo())
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
