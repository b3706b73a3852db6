package utils

import (
	"errors"
	"fmt"
)

// ErrorLevel classifies how an error is handled and reported.
type ErrorLevel string

const (
	// LevelUser errors are caused by the requesting user and rendered
	// back to them verbatim.
	LevelUser ErrorLevel = "USER"
	// LevelSystem errors come from collaborating services; the user sees
	// a generic message while the cause is logged.
	LevelSystem ErrorLevel = "SYSTEM"
	// LevelFatal errors left observable inconsistent state behind (for
	// example an announcement without its record) and must be logged with
	// enough detail to reconcile manually.
	LevelFatal ErrorLevel = "FATAL"
)

// Error codes.
const (
	CodeUnknown           = "UNKNOWN"
	CodeNotFound          = "NOT_FOUND"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInvalid           = "INVALID"
	CodeDuplicateResource = "DUPLICATE_RESOURCE"
	CodeCacheInvalid      = "CACHESTORE_INVALID_RESPONSE"
	CodeCacheUnknown      = "CACHESTORE_UNKNOWN"
	CodeLookupFailed      = "LOOKUP_FAILED"
	CodeOrphanedResource  = "ORPHANED_RESOURCE"
)

const genericMessage = "An unknown error has occurred.\nPlease try again later."

// SystemError is a typed error carrying a user-facing message separate from
// its debugging cause.
type SystemError struct {
	Code    string
	Message string
	Level   ErrorLevel
	Cause   error
}

func (e *SystemError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s [%s]: %v", e.Code, e.Level, e.Cause)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Code, e.Level, e.Message)
}

func (e *SystemError) Unwrap() error {
	return e.Cause
}

// UserMessage returns the message shown to the requesting user. System and
// fatal errors never leak their cause.
func (e *SystemError) UserMessage() string {
	if e.Level == LevelUser && e.Message != "" {
		return e.Message
	}
	if e.Message != "" {
		return e.Message
	}
	return genericMessage
}

// UserError builds a user-level SystemError.
func UserError(code, message string) *SystemError {
	return &SystemError{Code: code, Message: message, Level: LevelUser}
}

// SysError builds a system-level SystemError wrapping its cause.
func SysError(code string, cause error) *SystemError {
	return &SystemError{Code: code, Message: genericMessage, Level: LevelSystem, Cause: cause}
}

// FatalError builds a fatal SystemError for failures that leave
// inconsistent state behind.
func FatalError(code, message string, cause error) *SystemError {
	return &SystemError{Code: code, Message: message, Level: LevelFatal, Cause: cause}
}

// AsSystemError extracts a SystemError from an error chain.
func AsSystemError(err error) (*SystemError, bool) {
	var se *SystemError
	ok := errors.As(err, &se)
	return se, ok
}

// UserFacingMessage resolves any error to the message shown to the user.
func UserFacingMessage(err error) string {
	if se, ok := AsSystemError(err); ok {
		return se.UserMessage()
	}
	return genericMessage
}
