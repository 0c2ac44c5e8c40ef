// Package service implements the business logic of the Libris API.
//
// Services sit between HTTP handlers and repositories. Each service
// defines the repository interfaces it needs, takes them via a config
// struct, and returns sentinel errors from errors.go that the handler
// layer maps to ProblemDetails responses.
//
// # Services
//
//   - AuthService: register, login, change password. Issues stateless
//     access tokens through TokenService; credentials hashed behind
//     the PasswordHasher interface (bcrypt in production).
//   - LoanService: the loan lifecycle. Availability and the per-user
//     open-loan cap are pre-checked for precise errors, but the
//     storage-level conditional decrement is the authoritative guard
//     against oversubscription.
//   - UserService, BookService: catalog and member reads with a
//     TTL-cached list view, plus admin catalog management.
//
// # Error contract
//
// Business failures are sentinel errors checked with errors.Is.
// Infrastructure failures from internal/database pass through
// untranslated unless they carry business meaning (a duplicate email
// becomes ErrEmailInUse, a lost inventory race ErrBookUnavailable).
package service
