// Package model defines domain entities and data structures for the Libris API.
//
// The model package contains all struct definitions for domain objects and
// error definitions. Models are used across all layers of the application.
//
// # Domain Entities
//
//   - User: Library member account with role and credentials
//   - Book: Catalog title with its available copy count
//   - Loan: A checkout linking a user to a book, open until returned
//
// # JSON Serialization
//
// All models use json struct tags for API serialization. Sensitive fields
// such as password hashes use `json:"-"` and are never serialized.
//
// # Error Types
//
// RFC 9457 Problem Details errors are defined in errors.go:
//
//	type ProblemDetails struct {
//	    Type   string `json:"type"`
//	    Title  string `json:"title"`
//	    Status int    `json:"status"`
//	    Detail string `json:"detail,omitempty"`
//	}
//
// Constructors like NewNotFoundError and NewUnavailableError produce
// consistent error responses across handlers.
package model
