// Package errors contains the categorised ServiceError returned by services and
// rendered by the HTTP layer. The Message is shown to the client; Err is only logged.
package errors

import (
	"errors"
	"net/http"
)

// Category classifies a ServiceError and selects its HTTP status
type Category int

const (
	// CategoryGeneralError is an unexpected failure. Its message is never specific.
	CategoryGeneralError Category = iota
	// CategoryDataError is invalid client input.
	CategoryDataError
	// CategoryUnauthorized is a missing or invalid proof of identity.
	CategoryUnauthorized
	// CategoryForbidden is an identity acting on a resource it does not own.
	CategoryForbidden
	// CategoryResourceNotFound is a lookup of something that does not exist.
	CategoryResourceNotFound
	// CategoryNotSupported is functionality disabled by configuration.
	CategoryNotSupported
	// CategoryDataConflict is a request that conflicts with the resource's current state.
	CategoryDataConflict
	// CategoryLocked is a resource cooling down after repeated failures.
	CategoryLocked
	// CategoryDependencyFailure is an upstream provider, wallet or node failing.
	CategoryDependencyFailure
	// CategoryConnectionTimeout is an upstream that did not answer in time.
	CategoryConnectionTimeout
)

type categoryInfo struct {
	name   string
	status int
}

var categories = map[Category]categoryInfo{
	CategoryGeneralError:      {"CategoryGeneralError", http.StatusInternalServerError},
	CategoryDataError:         {"CategoryDataError", http.StatusBadRequest},
	CategoryUnauthorized:      {"CategoryUnauthorized", http.StatusUnauthorized},
	CategoryForbidden:         {"CategoryForbidden", http.StatusForbidden},
	CategoryResourceNotFound:  {"CategoryResourceNotFound", http.StatusNotFound},
	CategoryNotSupported:      {"CategoryNotSupported", http.StatusNotImplemented},
	CategoryDataConflict:      {"CategoryDataConflict", http.StatusConflict},
	CategoryLocked:            {"CategoryLocked", http.StatusLocked},
	CategoryDependencyFailure: {"CategoryDependencyFailure", http.StatusBadGateway},
	CategoryConnectionTimeout: {"CategoryConnectionTimeout", http.StatusGatewayTimeout},
}

func (c Category) String() string {
	if info, ok := categories[c]; ok {
		return info.name
	}
	return categories[CategoryGeneralError].name
}

// ServiceError is the error type crossing service boundaries
type ServiceError struct {
	Category Category
	Message  string
	Err      error
}

func (err *ServiceError) Error() string {
	if err.Err != nil {
		return err.Category.String() + ": " + err.Err.Error()
	}
	return err.Category.String() + ": " + err.Message
}

// Unwrap returns the underlying error
func (err *ServiceError) Unwrap() error {
	return err.Err
}

// StatusCode returns the HTTP status for the error's category
func (err *ServiceError) StatusCode() int {
	if info, ok := categories[err.Category]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// Is reports whether err is a ServiceError of category cat
func Is(err error, cat Category) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr) && svcErr.Category == cat
}

// IsInternalError reports whether err should be treated as a server-side failure
func IsInternalError(err error) bool {
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		return true
	}
	return svcErr.Category == CategoryGeneralError || svcErr.Category >= CategoryDependencyFailure
}

func newError(cat Category, err error, message string) error {
	if err == nil {
		err = errors.New(message)
	}
	return &ServiceError{Category: cat, Message: message, Err: err}
}

// GeneralError hides err behind "Internal Server Error"
func GeneralError(err error) error {
	return newError(CategoryGeneralError, err, "Internal Server Error")
}

// ResourceNotFoundError returns a 404 error with message
func ResourceNotFoundError(err error, message string) error {
	return newError(CategoryResourceNotFound, err, message)
}

// BadRequestError returns a 400 error with message
func BadRequestError(err error, message string) error {
	return newError(CategoryDataError, err, message)
}

// NotSupportedError returns a 501 error with message
func NotSupportedError(err error, message string) error {
	return newError(CategoryNotSupported, err, message)
}

// ForbiddenError returns a 403 error with message
func ForbiddenError(err error, message string) error {
	return newError(CategoryForbidden, err, message)
}

// UnAuthorizedError returns a 401 error with message
func UnAuthorizedError(err error, message string) error {
	return newError(CategoryUnauthorized, err, message)
}

// ConflictError returns a 409 error with message
func ConflictError(err error, message string) error {
	return newError(CategoryDataConflict, err, message)
}

// LockedError returns a 423 error with message
func LockedError(err error, message string) error {
	return newError(CategoryLocked, err, message)
}

// DependencyError returns a 502 error with message
func DependencyError(err error, message string) error {
	return newError(CategoryDependencyFailure, err, message)
}

// TimeoutError returns a 504 error with message
func TimeoutError(err error, message string) error {
	return newError(CategoryConnectionTimeout, err, message)
}
