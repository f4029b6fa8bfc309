// Package requestid attaches a correlation id to every HTTP request.
//
// Middleware reuses a valid "X-Request-ID" header or generates a UUID,
// stores it in the request context and echoes it in the response.
// LoggerExtractor feeds it into pkg/logger so every record logged with the
// request context carries a request_id attribute:
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//	r := chi.NewRouter()
//	r.Use(requestid.Middleware)
package requestid
