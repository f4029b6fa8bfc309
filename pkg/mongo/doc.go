// Package mongo connects to MongoDB with the official v2 driver.
//
// Config is read from MONGODB_* environment variables. New returns a
// pinged *mongo.Client, NewWithDatabase a handle to the configured
// database, and Healthcheck a ping closure for readiness probes.
package mongo
