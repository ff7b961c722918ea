package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestNotFoundError_Error(t *testing.T) {
	err := &NotFoundError{
		Resource: "blog",
		ID:       "507f1f77bcf86cd799439011",
	}

	expected := "blog not found: 507f1f77bcf86cd799439011"
	if err.Error() != expected {
		t.Errorf("NotFoundError.Error() = %v, want %v", err.Error(), expected)
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Field:   "outline",
		Message: "outline cannot be empty",
	}

	expected := "validation error on field 'outline': outline cannot be empty"
	if err.Error() != expected {
		t.Errorf("ValidationError.Error() = %v, want %v", err.Error(), expected)
	}
}

func TestAccessDeniedError_Error(t *testing.T) {
	err := &AccessDeniedError{
		Resource: "project",
		ID:       "abc",
	}

	expected := "access denied to project: abc"
	if err.Error() != expected {
		t.Errorf("AccessDeniedError.Error() = %v, want %v", err.Error(), expected)
	}
}

func TestInsufficientBalanceError_Shortfall(t *testing.T) {
	err := &InsufficientBalanceError{
		ServiceKey:      "sources_generation",
		RequiredBalance: 10,
		CurrentBalance:  3.5,
	}

	if err.Shortfall() != 6.5 {
		t.Errorf("Shortfall() = %v, want 6.5", err.Shortfall())
	}
}

func TestInsufficientBalanceError_Error(t *testing.T) {
	refill := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	err := &InsufficientBalanceError{
		ServiceKey:      "sources_generation",
		RequiredBalance: 10,
		CurrentBalance:  3,
		NextRefillTime:  &refill,
	}

	expected := "insufficient balance for sources_generation: required 10.00, have 3.00"
	if err.Error() != expected {
		t.Errorf("InsufficientBalanceError.Error() = %v, want %v", err.Error(), expected)
	}
}

func TestIsNotFound_True(t *testing.T) {
	err := &NotFoundError{Resource: "project", ID: "abc"}

	if !IsNotFound(err) {
		t.Error("IsNotFound should return true for NotFoundError")
	}
}

func TestIsNotFound_WrappedError(t *testing.T) {
	notFound := &NotFoundError{Resource: "blog", ID: "123"}
	wrapped := fmt.Errorf("failed to fetch blog: %w", notFound)

	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should return true for wrapped NotFoundError")
	}
}

func TestIsNotFound_False(t *testing.T) {
	err := errors.New("some other error")

	if IsNotFound(err) {
		t.Error("IsNotFound should return false for non-NotFoundError")
	}
}

func TestIsAccessDenied_WrappedError(t *testing.T) {
	denied := &AccessDeniedError{Resource: "project", ID: "xyz"}
	wrapped := fmt.Errorf("validation failed: %w", denied)

	if !IsAccessDenied(wrapped) {
		t.Error("IsAccessDenied should return true for wrapped AccessDeniedError")
	}
}

func TestIsInsufficientBalance_True(t *testing.T) {
	err := &InsufficientBalanceError{
		ServiceKey:      "sources_generation",
		RequiredBalance: 5,
		CurrentBalance:  0,
	}

	if !IsInsufficientBalance(err) {
		t.Error("IsInsufficientBalance should return true for InsufficientBalanceError")
	}
}

func TestIsInsufficientBalance_False(t *testing.T) {
	if IsInsufficientBalance(errors.New("boom")) {
		t.Error("IsInsufficientBalance should return false for generic errors")
	}
}

func TestIsExternalAPI_True(t *testing.T) {
	err := &ExternalAPIError{
		StatusCode: 503,
		Message:    "service unavailable",
		API:        "websearch",
	}

	if !IsExternalAPI(err) {
		t.Error("IsExternalAPI should return true for ExternalAPIError")
	}
}

func TestWrapError_NilError(t *testing.T) {
	if WrapError(nil, "context") != nil {
		t.Error("WrapError should return nil for nil error")
	}
}

func TestWrapError_PreservesType(t *testing.T) {
	notFound := &NotFoundError{Resource: "blog", ID: "1"}
	wrapped := WrapError(notFound, "while validating")

	if !IsNotFound(wrapped) {
		t.Error("WrapError should preserve the underlying error type")
	}
}
