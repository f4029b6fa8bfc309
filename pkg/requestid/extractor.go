package requestid

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/boardnotify/pkg/logger"
)

// LoggerExtractor adds the request id to every record logged with a
// request context. Pass it to logger.WithContextExtractors.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if requestID := FromContext(ctx); requestID != "" {
			return logger.RequestID(requestID), true
		}
		return slog.Attr{}, false
	}
}
