// Package config loads typed configuration structs from environment
// variables using github.com/caarlos0/env, after reading an optional .env
// file with github.com/joho/godotenv.
//
// Every boardnotify package that needs settings exposes its own Config struct
// with `env` and `envDefault` tags (httpserver.Config, pg.Config,
// notifications.Config, ...). The binary loads each of them with Load:
//
//	var (
//		httpCfg   httpserver.Config
//		notifyCfg notifications.Config
//	)
//	config.MustLoad(&httpCfg)
//	config.MustLoad(&notifyCfg)
//
// Parse failures are returned joined with ErrParsingConfig so callers can use
// errors.Is.
package config
