// Package infra contains technical adapters: the SQLite store, metrics
// sinks, MQTT result publication, Sentry monitoring and log output. These
// packages implement interfaces declared in the core packages.
package infra
