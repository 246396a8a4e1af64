// Package config loads the application configuration.
//
// Configuration is sourced from environment variables, optionally overlaid by a
// .env file for local development. Defaults are declared as `default` struct
// tags on the per-package partial configs and bound into Viper by reflection,
// so SERVER_PORT maps to server.port, DATABASE_HOST to database.host, and so on.
package config
