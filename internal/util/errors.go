// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrInvalidInput     = errors.New("invalid input provided")
	ErrNotFound         = errors.New("resource not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrLoanNotFound     = errors.New("loan not found")
	ErrNoSession        = errors.New("no active user session")
)

// IsError reports whether err matches target in its chain.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
