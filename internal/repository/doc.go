// Package repository provides data access for the Libris API.
//
// Repositories encapsulate all SurrealDB queries and result parsing,
// returning domain models from internal/model. Services depend on
// repository interfaces they define themselves, so repositories stay
// swappable in tests.
//
// # Conventions
//
//   - GetByX methods return (nil, nil) when the record is absent;
//     services translate that into their own not-found errors.
//   - FindX methods return empty slices, never nil, for missing data.
//   - Unique constraint violations surface as database.ErrDuplicate.
//
// # Atomic inventory writes
//
// Loan creation and return each run as a single SurrealDB transaction
// built with database.TxBuilder. The copy-counter update is conditional
// (copies > 0 on checkout, return_date IS NONE on return) and a THROW
// aborts the transaction when the guard fails, which keeps the counter
// consistent under concurrent requests without client-side locking.
package repository
