// Package redis connects to Redis with go-redis/v9.
//
// Connect returns a pinged client built from REDIS_* configuration and
// Healthcheck wraps a ping for readiness probes. The notification relay
// uses the client for pub/sub between service instances.
package redis
