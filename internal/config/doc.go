// Package config manages application configuration for the Libris API.
//
// The config package loads and validates configuration from environment variables.
// All configuration is centralized here to provide a single source of truth.
//
// # Configuration Loading
//
// Configuration is loaded from environment variables:
//
//	cfg, err := config.Load()
//
// Call Validate before using the config; it reports every failure at
// once via errors.Join rather than stopping at the first.
//
// # Configuration Groups
//
// Configuration is organized into logical groups:
//
//   - ServerConfig: HTTP server settings (port, timeouts, CORS origins)
//   - DatabaseConfig: SurrealDB connection settings
//   - JWTConfig: JWT signing and validation settings
//   - LoanConfig: lending policy (open-loan cap, loan period)
//   - CacheConfig: catalog read-cache TTL
//   - RateLimitConfig: login throttling
//
// # Environment Variables
//
// Key environment variables:
//
//	SERVER_PORT         - HTTP server port (default: 8080)
//	DB_HOST, DB_PORT    - SurrealDB endpoint
//	DB_NAMESPACE        - Database namespace (default: libris)
//	DB_DATABASE         - Database name (default: main)
//	JWT_PRIVATE_KEY_PATH, JWT_PUBLIC_KEY_PATH - RS256 key files
//	JWT_EXPIRATION_MINS - Token lifetime in minutes (default: 15)
//	LOAN_MAX_OPEN       - Max open loans per user (default: 3)
//	LOAN_PERIOD_DAYS    - Days until a loan is due (default: 14)
//	CACHE_TTL           - Catalog cache TTL (default: 5m)
package config
