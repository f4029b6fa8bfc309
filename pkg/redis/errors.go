package redis

import "errors"

var (
	// ErrFailedToParseRedisConnString wraps url parsing failures of REDIS_URL.
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")
	// ErrRedisNotReady is returned when no PING succeeded within the retry budget.
	ErrRedisNotReady = errors.New("redis did not answer PING within the retry budget")
	// ErrEmptyConnectionURL is returned for an empty REDIS_URL.
	ErrEmptyConnectionURL = errors.New("empty redis connection URL, set REDIS_URL")
	// ErrHealthcheckFailed is returned by the readiness probe.
	ErrHealthcheckFailed = errors.New("redis healthcheck failed")
)
