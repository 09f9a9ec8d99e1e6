// Package config loads and validates the service configuration.
//
// Configuration is a YAML file with ${VAR} environment-variable expansion.
// Secrets (the gateway API key, the database password) are expected to come
// from the environment rather than being committed in the file.
package config
