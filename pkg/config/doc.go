// Package config provides application configuration management.
//
// # Overview
//
// Configuration starts from Default, is overlaid by an optional YAML file
// named in COURSEBOOK_CONFIG_FILE and finally by COURSEBOOK_* environment
// variables. The result is validated before it is returned.
//
// # Configuration Structure
//
// Server settings:
//
//	COURSEBOOK_HOST="0.0.0.0"
//	COURSEBOOK_PORT="4000"
//	COURSEBOOK_HEALTH_PORT="9090"
//	COURSEBOOK_CORS_ORIGINS="https://app.example.com,https://admin.example.com"
//
// Auth settings:
//
//	COURSEBOOK_JWT_SECRET="at-least-sixteen-bytes"
//	COURSEBOOK_TOKEN_EXPIRY="24h"  # 0 disables expiry
//	COURSEBOOK_BCRYPT_COST="10"
//
// Storage settings:
//
//	COURSEBOOK_STORAGE_TYPE="postgres"  # memory, postgres
//	COURSEBOOK_POSTGRES_URL="postgres://localhost/coursebook?sslmode=disable"
//	COURSEBOOK_RUN_MIGRATIONS="true"
//
// Session settings:
//
//	COURSEBOOK_REDIS_URL="redis://localhost:6379/0"  # empty keeps sessions in memory
//	COURSEBOOK_SESSION_TTL="24h"
//
// Observability settings:
//
//	COURSEBOOK_LOG_LEVEL="info"  # debug, info, warn, error
//	COURSEBOOK_OTEL_ENABLED="true"
//	COURSEBOOK_OTEL_ENDPOINT="otel-collector:4317"
//
// The same keys in YAML use the section and snake_case field names:
//
//	server:
//	  port: "4000"
//	auth:
//	  token_expiry: 12h
//	storage:
//	  type: postgres
//	  postgres_url: postgres://localhost/coursebook
//
// # Related Packages
//
//   - pkg/storage: Uses storage configuration
//   - pkg/session: Uses session configuration
//   - pkg/observability: Uses observability configuration
package config
