// Package clientip resolves the caller's IP address behind proxies and
// carries it in the request context so log records can include it.
//
//	r.Use(clientip.MiddlewareWithHeaders(cfg.TrustedHeaders...))
//	log := logger.New(logger.WithContextExtractors(clientip.LoggerExtractor()))
//
// Only list headers your edge proxy overwrites; anything else is client
// controlled.
package clientip
