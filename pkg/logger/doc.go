// Package logger builds the service's *slog.Logger and holds the attribute
// helpers used across boardnotify so that keys stay consistent in every
// record (user_id, notification_id, waiter_id, request_id, ...).
//
// New takes functional options for format, level, static attributes and
// ContextExtractor callbacks. Extractors run on every Handle call through
// LogHandlerDecorator, which is how request ids reach records written deep
// inside the notification core:
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "boardnotify"),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "waiter resolved",
//	    logger.UserID(42),
//	    logger.WaiterID(w.ID()),
//	)
//
// Helpers such as Error return an empty slog.Attr for nil input, which slog
// drops, so callers never need a nil check before logging.
package logger
