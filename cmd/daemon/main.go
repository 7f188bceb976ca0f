package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/genricoloni/mpdbar/internal/artwork"
	"github.com/genricoloni/mpdbar/internal/client"
	"github.com/genricoloni/mpdbar/internal/config"
	"github.com/genricoloni/mpdbar/internal/discovery"
	"github.com/genricoloni/mpdbar/internal/domain"
	"github.com/genricoloni/mpdbar/internal/engine"
	"github.com/genricoloni/mpdbar/internal/mpris"
	"github.com/genricoloni/mpdbar/internal/notify"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const discoveryTimeout = 2 * time.Second

// AppOptions is the daemon's dependency graph
var AppOptions = fx.Options(
	// Provide dependencies
	fx.Provide(
		newLogger,
		fx.Annotate(config.NewAppConfig, fx.As(new(domain.Config))),
		fx.Annotate(newClient,
			fx.As(fx.Self()),
			fx.As(new(domain.MusicClient)),
			fx.As(new(mpris.Controller)),
		),
		notify.NewNotifier,
		newArtwork,
		engine.NewEngine,
		mpris.NewBridge,
		discovery.NewBrowser,
	),

	// Lifecycle hooks
	fx.Invoke(registerHooks),
)

func main() {
	app := fx.New(
		// Logger configuration
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		AppOptions,
	)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Start the application
	if err := app.Start(ctx); err != nil {
		panic(err)
	}

	// Wait for interrupt signal
	<-ctx.Done()

	// Stop the application gracefully
	if err := app.Stop(context.Background()); err != nil {
		panic(err)
	}
}

// newLogger creates a new zap logger instance
func newLogger() (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return logger, nil
}

func newClient(logger *zap.Logger, cfg domain.Config) *client.Client {
	return client.NewClient(logger.Named("client"), cfg)
}

// newArtwork follows the client's address so discovered servers serve art too
func newArtwork(logger *zap.Logger, cfg domain.Config, c *client.Client) domain.ArtworkResolver {
	return artwork.NewResolver(logger.Named("artwork"), cfg, artwork.WithAddress(c.Address))
}

type hookParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Logger    *zap.Logger
	Config    domain.Config
	Client    *client.Client
	Browser   *discovery.Browser
	Engine    *engine.Engine
	Bridge    *mpris.Bridge
	Notifier  domain.Notifier
}

// registerHooks sets up application lifecycle hooks
func registerHooks(p hookParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			discoverServer(ctx, p.Logger, p.Config, p.Client, p.Browser)
			if err := p.Bridge.Start(ctx); err != nil {
				return err
			}
			if err := p.Engine.Start(ctx); err != nil {
				return err
			}
			p.Logger.Info("mpdbar daemon started", zap.String("server", p.Client.Address().String()))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Logger.Info("Shutting down")
			err := multierr.Combine(
				p.Engine.Stop(ctx),
				p.Bridge.Stop(ctx),
			)
			if c, ok := p.Notifier.(io.Closer); ok {
				err = multierr.Append(err, c.Close())
			}
			return err
		},
	})
}

// discoverServer points the client at the first announced server when
// discovery is enabled and no host is configured
func discoverServer(ctx context.Context, logger *zap.Logger, cfg domain.Config, c *client.Client, b *discovery.Browser) {
	if !cfg.DiscoveryEnabled() || cfg.GetHost() != "" {
		return
	}
	servers, err := b.Browse(ctx, discoveryTimeout)
	if err != nil {
		logger.Warn("Server discovery failed", zap.Error(err))
		return
	}
	if len(servers) == 0 {
		logger.Info("No server announced, using default address")
		return
	}
	logger.Info("Using discovered server", zap.Stringer("server", servers[0]))
	c.SetAddress(servers[0].Address())
}
