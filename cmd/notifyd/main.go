// Command notifyd serves board notifications over HTTP long polling.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/boardnotify/modules/notification"
	"github.com/dmitrymomot/boardnotify/pkg/clientip"
	"github.com/dmitrymomot/boardnotify/pkg/config"
	"github.com/dmitrymomot/boardnotify/pkg/httpserver"
	"github.com/dmitrymomot/boardnotify/pkg/logger"
	"github.com/dmitrymomot/boardnotify/pkg/notifications"
	"github.com/dmitrymomot/boardnotify/pkg/requestid"
)

type appConfig struct {
	Name          string        `env:"APP_NAME" envDefault:"boardnotify"`
	Env           string        `env:"APP_ENV" envDefault:"development"`
	Storage       string        `env:"NOTIFY_STORAGE" envDefault:"memory"` // memory, postgres or mongo
	Relay         string        `env:"NOTIFY_RELAY" envDefault:"none"`     // none or redis
	Internal      bool          `env:"NOTIFY_EXPOSE_INTERNAL" envDefault:"true"`
	MemoryUsers   []int64       `env:"NOTIFY_MEMORY_USERS" envSeparator:","`
	MongoTx       bool          `env:"NOTIFY_MONGO_TRANSACTIONS" envDefault:"true"`
	UsersTable    string        `env:"NOTIFY_USERS_TABLE" envDefault:"users"`
	UsersColl     string        `env:"NOTIFY_USERS_COLLECTION" envDefault:"users"`
	UsersIDField  string        `env:"NOTIFY_USERS_ID_FIELD" envDefault:"_id"`
	HealthTimeout time.Duration `env:"HEALTH_TIMEOUT" envDefault:"3s"`
	IPHeaders     []string      `env:"HTTP_TRUSTED_IP_HEADERS" envDefault:"CF-Connecting-IP,X-Forwarded-For,X-Real-IP" envSeparator:","`
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("notifyd stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var app appConfig
	if err := config.Load(&app); err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(app.Env, app.Name),
		logger.WithContextExtractors(requestid.LoggerExtractor(), clientip.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	var notifyCfg notifications.Config
	if err := config.Load(&notifyCfg); err != nil {
		return err
	}
	var httpCfg httpserver.Config
	if err := config.Load(&httpCfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	be, err := openBackend(ctx, app, log)
	if err != nil {
		return err
	}
	defer be.close()

	directory := be.directory
	if directory != nil && notifyCfg.UserCacheSize > 0 {
		directory = notifications.NewCachedDirectory(directory, notifyCfg.UserCacheSize, notifyCfg.UserCacheTTL)
	}

	registry := notifications.NewRegistry(notifications.WithRegistryLogger(log))

	var deliverer notifications.Deliverer = registry
	relayDone := make(chan struct{})
	switch app.Relay {
	case "", "none":
		close(relayDone)
	case "redis":
		rb, err := openRelay(ctx, registry, log)
		if err != nil {
			return err
		}
		defer rb.close()
		deliverer = notifications.NewMultiDeliverer(
			[]notifications.Deliverer{registry, rb.relay},
			notifications.WithMultiDelivererLogger(log),
		)
		be.checks = append(be.checks, rb.check)
		go func() {
			defer close(relayDone)
			if err := rb.relay.Run(ctx); err != nil {
				log.Error("notification relay stopped", logger.Error(err))
			}
		}()
	default:
		return fmt.Errorf("unknown NOTIFY_RELAY %q", app.Relay)
	}

	service := notifications.NewService(be.storage, directory, deliverer, notifications.WithServiceLogger(log))
	poller := notifications.NewPoller(be.storage, directory, registry, notifyCfg, notifications.WithPollerLogger(log))
	handlers := notification.NewHandlers(service, poller, notification.WithLogger(log))

	health := chi.NewRouter()
	health.Get("/live", httpserver.HealthCheckHandler(log, 0))
	health.Get("/ready", httpserver.HealthCheckHandler(log, app.HealthTimeout, be.checks...))

	opts := notification.RouterOptions{Notifications: handlers, Health: health}
	if app.Internal {
		opts.Internal = notification.Internal(handlers)
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware, clientip.MiddlewareWithHeaders(app.IPHeaders...))
	r.Mount("/", notification.Router(opts))

	server := httpserver.NewFromConfig(httpCfg.FitWriteTimeout(notifyCfg.MaxWait),
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(l *slog.Logger) {
			l.Info("notification service ready",
				slog.String("storage", app.Storage),
				slog.String("relay", app.Relay),
				logger.Duration(notifyCfg.MaxWait),
			)
		}),
		httpserver.WithDrainHook(func(_ context.Context, l *slog.Logger) {
			if err := registry.Close(); err != nil {
				l.Error("failed to drain waiters", logger.Error(err))
			}
		}),
		httpserver.WithStopHook(func(*slog.Logger) { cancel() }),
	)

	err = server.Run(ctx, r)
	cancel()
	<-relayDone
	return err
}
