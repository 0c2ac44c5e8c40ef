package handler

import (
	"errors"

	"github.com/openshelf/libris/internal/model"
	"github.com/openshelf/libris/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// This centralizes error handling logic for all handlers, ensuring
// consistent HTTP status codes and error messages across the API.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	switch {
	// ===== Authentication Errors → 401 =====
	case errors.Is(err, service.ErrInvalidCredentials):
		return model.NewUnauthorizedError("invalid email or password")
	case errors.Is(err, service.ErrIncorrectPassword):
		return model.NewUnauthorizedError(err.Error())

	// ===== Authorization Errors → 403 =====
	case errors.Is(err, service.ErrNotLoanOwner):
		return model.NewForbiddenError(err.Error())

	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrUserNotFound):
		return model.NewNotFoundError("user")
	case errors.Is(err, service.ErrBookNotFound):
		return model.NewNotFoundError("book")
	case errors.Is(err, service.ErrLoanNotFound):
		return model.NewNotFoundError("loan")

	// ===== Conflict Errors → 409 =====
	case errors.Is(err, service.ErrEmailInUse):
		return model.NewConflictError("email already registered")
	case errors.Is(err, service.ErrLoanAlreadyReturned):
		return model.NewConflictError("loan already returned")
	case errors.Is(err, service.ErrBookUnavailable):
		return model.NewUnavailableError("no copies available")

	// ===== Validation Errors → 422 =====
	case errors.Is(err, service.ErrNameRequired):
		return model.NewValidationError([]model.FieldError{{Field: "name", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidEmail):
		return model.NewValidationError([]model.FieldError{{Field: "email", Message: "invalid email format"}})
	case errors.Is(err, service.ErrPasswordRequired),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrPasswordTooLong):
		return model.NewValidationError([]model.FieldError{{Field: "password", Message: err.Error()}})
	case errors.Is(err, service.ErrSamePassword):
		return model.NewValidationError([]model.FieldError{{Field: "new_password", Message: err.Error()}})
	case errors.Is(err, service.ErrBookNameRequired):
		return model.NewValidationError([]model.FieldError{{Field: "name", Message: err.Error()}})
	case errors.Is(err, service.ErrAuthorRequired):
		return model.NewValidationError([]model.FieldError{{Field: "author", Message: err.Error()}})
	case errors.Is(err, service.ErrNegativeCopies):
		return model.NewValidationError([]model.FieldError{{Field: "copies", Message: err.Error()}})

	// ===== Limit Errors → 422 =====
	case errors.Is(err, service.ErrLoanLimitReached):
		var limitErr *service.LoanLimitError
		if errors.As(err, &limitErr) {
			return model.NewLimitExceededError("open loans", limitErr.Limit, limitErr.Current)
		}
		return model.NewLimitExceededError("open loans", 0, 0)

	// ===== Default → 500 =====
	default:
		return model.NewInternalError("")
	}
}
