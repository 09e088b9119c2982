/*
Package errs provides custom error types and application-level error code constants.

This file defines the CustomError struct, which implements the standard Go error interface
and carries a business code, a user-facing message, and an HTTP status code.
*/
package errs

import (
	"fmt"
	"net/http"
	"strings"

	"pingchat/internal/pkg/logx"
)

// CustomError is the error structure used throughout the application.
// It implements the error interface and adds a business code and HTTP status code.
type CustomError struct {
	// Code is the business error code (see constants definition).
	Code int

	// Message is the user-facing error description.
	Message string

	// Status is the HTTP status code corresponding to this error.
	Status int
}

// Error implements the standard Go error interface.
func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// NewError constructs a new *CustomError from a predefined error code.
// Optional details are applied printf-style when the message template contains
// formatting placeholders. Unknown codes fall back to ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	templateErr, ok := errorMap[code]

	if !ok {
		logx.Error(
			fmt.Errorf("error code %d is not registered in errorMap", code),
			"Unknown error code requested",
		)

		unknownErr := errorMap[ErrUnknown]
		return &CustomError{
			Code:    unknownErr.Code,
			Message: unknownErr.Message,
			Status:  unknownErr.Status,
		}
	}

	customErr := templateErr

	if customErr.Status == 0 {
		customErr.Status = http.StatusBadRequest
	}

	if len(details) > 0 && strings.Contains(customErr.Message, "%") {
		customErr.Message = fmt.Sprintf(customErr.Message, details...)
	}

	return &customErr
}
