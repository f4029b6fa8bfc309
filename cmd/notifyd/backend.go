package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dmitrymomot/boardnotify/pkg/config"
	"github.com/dmitrymomot/boardnotify/pkg/httpserver"
	"github.com/dmitrymomot/boardnotify/pkg/logger"
	"github.com/dmitrymomot/boardnotify/pkg/mongo"
	"github.com/dmitrymomot/boardnotify/pkg/notifications"
	"github.com/dmitrymomot/boardnotify/pkg/notifications/mongostore"
	"github.com/dmitrymomot/boardnotify/pkg/notifications/pgstore"
	"github.com/dmitrymomot/boardnotify/pkg/notifications/redisrelay"
	"github.com/dmitrymomot/boardnotify/pkg/pg"
	"github.com/dmitrymomot/boardnotify/pkg/redis"
)

// backend is the storage the service runs on, together with the user
// directory of the same system and its readiness probes.
type backend struct {
	storage   notifications.Storage
	directory notifications.UserDirectory
	checks    []httpserver.Check
	close     func()
}

const memoryUsersEnv = "NOTIFY_MEMORY_USERS"

func openBackend(ctx context.Context, app appConfig, log *slog.Logger) (*backend, error) {
	switch app.Storage {
	case "", "memory":
		return &backend{
			storage:   notifications.NewMemoryStorage(),
			directory: memoryDirectory(app.MemoryUsers, log),
			close:     func() {},
		}, nil

	case "postgres":
		var cfg pg.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx, pool, cfg, pgstore.Migrations, log); err != nil {
			pool.Close()
			return nil, err
		}
		return &backend{
			storage:   pgstore.New(pool),
			directory: pgstore.NewDirectory(pool, pgstore.WithUsersTable(app.UsersTable)),
			checks:    []httpserver.Check{{Name: "postgres", Fn: pg.Healthcheck(pool)}},
			close:     pool.Close,
		}, nil

	case "mongo":
		var cfg mongo.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		db, err := mongo.NewWithDatabase(ctx, cfg, "")
		if err != nil {
			return nil, err
		}
		client := db.Client()
		var opts []mongostore.Option
		if !app.MongoTx {
			log.Warn("mongo transactions disabled; run a single instance to keep notification ids in order")
			opts = append(opts, mongostore.WithoutTransactions())
		}
		storage := mongostore.New(db, opts...)
		if err := storage.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &backend{
			storage:   storage,
			directory: mongostore.NewDirectory(db, app.UsersColl, app.UsersIDField),
			checks:    []httpserver.Check{{Name: "mongo", Fn: mongo.Healthcheck(client)}},
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					log.Error("failed to disconnect from mongo", logger.Error(err))
				}
			},
		}, nil
	}

	return nil, fmt.Errorf("unknown NOTIFY_STORAGE %q", app.Storage)
}

// memoryDirectory builds the user directory for the in-memory backend. A set
// NOTIFY_MEMORY_USERS, even an empty one, restricts polling to the listed
// users. Unset, every user is accepted.
func memoryDirectory(users []int64, log *slog.Logger) notifications.UserDirectory {
	if _, ok := os.LookupEnv(memoryUsersEnv); ok || len(users) > 0 {
		return notifications.NewMemoryDirectory(users...)
	}
	log.Warn("NOTIFY_MEMORY_USERS is not set; every user id is accepted")
	return nil
}

// relayBackend is the Redis connection behind the cross-instance relay.
type relayBackend struct {
	relay *redisrelay.Relay
	check httpserver.Check
	close func()
}

func openRelay(ctx context.Context, registry *notifications.Registry, log *slog.Logger) (*relayBackend, error) {
	var redisCfg redis.Config
	if err := config.Load(&redisCfg); err != nil {
		return nil, err
	}
	var relayCfg redisrelay.Config
	if err := config.Load(&relayCfg); err != nil {
		return nil, err
	}

	client, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return nil, err
	}

	relay, err := redisrelay.New(client, registry,
		redisrelay.WithLogger(log),
		redisrelay.WithChannel(relayCfg.Channel),
	)
	if err != nil {
		return nil, errors.Join(err, client.Close())
	}

	return &relayBackend{
		relay: relay,
		check: httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)},
		close: func() {
			if err := client.Close(); err != nil {
				log.Error("failed to close redis client", logger.Error(err))
			}
		},
	}, nil
}
