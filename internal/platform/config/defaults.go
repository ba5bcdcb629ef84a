package config

import (
	"fmt"

	"github.com/knadh/koanf/v2"
)

const (
	defaultServerPort  = 8080
	defaultAppName     = "onion"
	defaultDefaultBody = "koa response"
)

// defaults returns the default configuration values.
// These are loaded first and can be overridden by base.yaml, profile YAML, and env vars.
func defaults() map[string]any {
	return map[string]any{
		"app.name":         defaultAppName,
		"app.default_body": defaultDefaultBody,

		"server.host":          "0.0.0.0",
		"server.port":          defaultServerPort,
		"server.read_timeout":  "5s",
		"server.write_timeout": "10s",
		"server.idle_timeout":  "120s",

		"log.level":  "info",
		"log.format": "json",

		"telemetry.enabled":      false,
		"telemetry.exporter":     "stdout",
		"telemetry.endpoint":     "",
		"telemetry.service_name": defaultAppName,
	}
}

// loadDefaults seeds k with defaults(). Registering every key up front also
// makes each one resolvable from the environment even when no YAML layer
// mentions it.
func loadDefaults(k *koanf.Koanf) error {
	for key, val := range defaults() {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("setting default %s: %w", key, err)
		}
	}
	return nil
}
