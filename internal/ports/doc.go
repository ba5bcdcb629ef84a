// Package ports defines the interfaces shared between the HTTP adapters and
// the platform layer. Components that can report readiness implement
// HealthChecker; the readiness endpoint consumes a HealthRegistry.
package ports
