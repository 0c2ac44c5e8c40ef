// Package middleware provides HTTP middleware for the Libris API.
//
// The middleware package contains reusable components for authentication,
// authorization, rate limiting, and request processing.
//
// # Available Middleware
//
//   - Auth: JWT token validation and claims extraction
//   - AdminOnly: role check for administrative routes, runs after Auth
//   - RateLimit: per-user or per-IP token bucket limiting
//   - RequestID, Logger, Recovery, CORS, Compress: request plumbing
//
// # Authentication
//
// The auth middleware validates bearer tokens and stores the claims
// in the request context:
//
//	mux.Handle("POST /v1/loans", middleware.Chain(h, middleware.Auth(authSvc)))
//
// After authentication, handlers can access user info:
//
//	userID := middleware.GetUserID(r.Context())
//	claims := middleware.GetClaims(r.Context())
//
// Admin routes stack AdminOnly after Auth:
//
//	middleware.Chain(h, middleware.Auth(authSvc), middleware.AdminOnly)
//
// # Rate Limiting
//
// A token bucket limiter protects the login endpoint against
// credential stuffing. Limits come from config.RateLimitConfig.
//
// # Context Values
//
// Middleware sets context values accessible via helper functions:
//
//   - GetUserID(ctx): authenticated user ID
//   - GetUserEmail(ctx): authenticated user email
//   - GetClaims(ctx): full JWT claims
//   - GetRequestID(ctx): unique request identifier
package middleware
