// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// The feed-to-route assignment is static: it is read once at startup and
// rejected if a route appears under more than one feed.
package config
