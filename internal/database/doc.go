// Package database provides database connectivity for the Libris API.
//
// The database package abstracts SurrealDB operations and provides
// a consistent interface for data access across the application.
//
// # Database Interface
//
// The Database interface defines core operations:
//
//	type Database interface {
//	    Query(ctx context.Context, query string, vars map[string]interface{}) ([]interface{}, error)
//	    QueryOne(ctx context.Context, query string, vars map[string]interface{}) (interface{}, error)
//	    Execute(ctx context.Context, query string, vars map[string]interface{}) error
//	    Close() error
//	}
//
// # Connection Management
//
// Connect to SurrealDB:
//
//	db := database.NewSurrealDB(database.Config{
//	    Host:      "localhost",
//	    Port:      "8000",
//	    Namespace: "libris",
//	    Database:  "main",
//	    User:      "root",
//	    Password:  "secret",
//	})
//	err := db.Connect(ctx)
//
// # Error Types
//
// Standard error types for data operations:
//
//   - ErrNotFound: Record does not exist
//   - ErrDuplicate: Unique constraint violation
//   - ErrConnection: Database connection failed
//
// # Atomic Writes
//
// Inventory-sensitive writes (loan creation, returns) use the batch
// transaction helpers in transaction.go so copy counters and loan rows
// change together or not at all.
package database
