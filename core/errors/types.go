// ABOUTME: Custom error types for the core business logic
// ABOUTME: Provides structured errors for better error handling and API responses

package errors

import (
	"errors"
	"fmt"
	"time"
)

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// AccessDeniedError represents a failed ownership or permission check
type AccessDeniedError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access denied to %s: %s", e.Resource, e.ID)
}

// InsufficientBalanceError represents a failed service balance check.
// It carries the balance breakdown so the API layer can report the
// shortfall and the next refill time to the caller.
type InsufficientBalanceError struct {
	ServiceKey      string
	RequiredBalance float64
	CurrentBalance  float64
	NextRefillTime  *time.Time
}

// Error implements the error interface
func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for %s: required %.2f, have %.2f",
		e.ServiceKey, e.RequiredBalance, e.CurrentBalance)
}

// Shortfall returns how many credits are missing
func (e *InsufficientBalanceError) Shortfall() float64 {
	return e.RequiredBalance - e.CurrentBalance
}

// ExternalAPIError represents an error from an external API
type ExternalAPIError struct {
	StatusCode int
	Message    string
	API        string
}

// Error implements the error interface
func (e *ExternalAPIError) Error() string {
	return fmt.Sprintf("external API error from %s: %d - %s", e.API, e.StatusCode, e.Message)
}

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsAccessDenied checks if an error is an AccessDeniedError
func IsAccessDenied(err error) bool {
	var deniedErr *AccessDeniedError
	return errors.As(err, &deniedErr)
}

// IsInsufficientBalance checks if an error is an InsufficientBalanceError
func IsInsufficientBalance(err error) bool {
	var balanceErr *InsufficientBalanceError
	return errors.As(err, &balanceErr)
}

// IsExternalAPI checks if an error is an ExternalAPIError
func IsExternalAPI(err error) bool {
	var apiErr *ExternalAPIError
	return errors.As(err, &apiErr)
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
