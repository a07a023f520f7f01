package concept

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes driver errors.
type ErrorCode string

const (
	ErrCodeDriverClosed          ErrorCode = "DRIVER_CLOSED"
	ErrCodeDatabaseNotFound      ErrorCode = "DATABASE_NOT_FOUND"
	ErrCodeDatabaseExists        ErrorCode = "DATABASE_EXISTS"
	ErrCodeInvalidName           ErrorCode = "INVALID_NAME"
	ErrCodeInvalidArgument       ErrorCode = "INVALID_ARGUMENT"
	ErrCodeTransactionClosed     ErrorCode = "TRANSACTION_CLOSED"
	ErrCodeTransactionTimeout    ErrorCode = "TRANSACTION_TIMEOUT"
	ErrCodeTransactionReadOnly   ErrorCode = "TRANSACTION_READ_ONLY"
	ErrCodeTransactionNotSchema  ErrorCode = "TRANSACTION_NOT_SCHEMA"
	ErrCodeTransactionSchemaData ErrorCode = "TRANSACTION_SCHEMA_DATA"
	ErrCodeTypeLabelTaken        ErrorCode = "TYPE_LABEL_TAKEN"
	ErrCodeTypeAbstract          ErrorCode = "TYPE_ABSTRACT"
	ErrCodeTypeNotFound          ErrorCode = "TYPE_NOT_FOUND"
)

// DriverError is an error reported by a driver.
type DriverError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *DriverError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DriverError) Unwrap() error {
	return e.Err
}

// NewDriverError creates a DriverError with a formatted message.
func NewDriverError(code ErrorCode, format string, args ...any) *DriverError {
	return &DriverError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsCode reports whether err is, or wraps, a DriverError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var de *DriverError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsDriverError reports whether err is, or wraps, any DriverError.
func IsDriverError(err error) bool {
	var de *DriverError
	return errors.As(err, &de)
}
