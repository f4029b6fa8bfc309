// Package pg bootstraps PostgreSQL access on top of pgx/v5.
//
// It exposes Config (populated from PG_* environment variables), Connect
// (a pgxpool.Pool with retry), Migrate (goose migrations read from an
// fs.FS) and Healthcheck (a ping closure for readiness probes).
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, pgstore.Migrations, slog.Default()); err != nil {
//	    return err
//	}
package pg
