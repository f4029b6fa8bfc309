// Package httpserver wraps net/http with graceful shutdown, functional
// options and health-check handlers.
//
// Run blocks until the context is cancelled or SIGINT/SIGTERM arrives.
// Shutdown then proceeds in three steps:
//
//  1. drain hooks (WithDrainHook) release long-running requests, e.g. by
//     closing the long-poll waiter registry;
//  2. http.Server.Shutdown waits for in-flight requests within
//     ShutdownTimeout;
//  3. stop hooks (WithStopHook) close remaining resources.
//
// Because long-poll responses stay open for up to the maximum wait,
// Config.FitWriteTimeout keeps WriteTimeout above it.
//
//	srv := httpserver.NewFromConfig(cfg.FitWriteTimeout(notifyCfg.MaxWait),
//	    httpserver.WithLogger(log),
//	    httpserver.WithDrainHook(func(context.Context, *slog.Logger) { _ = registry.Close() }),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server failed", logger.Error(err))
//	}
package httpserver
