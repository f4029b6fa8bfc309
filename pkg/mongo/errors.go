package mongo

import "errors"

var (
	// ErrFailedToConnectToMongo is returned once every connection attempt failed.
	ErrFailedToConnectToMongo = errors.New("failed to connect to mongo")
	// ErrEmptyConnectionURL is returned for an empty MONGODB_URL.
	ErrEmptyConnectionURL = errors.New("empty mongo connection url, use MONGODB_URL env var")
	// ErrHealthcheckFailed is returned by the readiness probe.
	ErrHealthcheckFailed = errors.New("mongo healthcheck failed")
)
