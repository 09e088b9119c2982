/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the CustomError template corresponding to every application error code.
// Entries without an explicit Status default to HTTP 400 when rendered.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format."},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Malformed request body."},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data."},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Attachment and Content Errors
	ErrMessageContentTooLong:  {Code: ErrMessageContentTooLong, Message: "Message is too long."},
	ErrFileSizeTooLarge:       {Code: ErrFileSizeTooLarge, Message: "File is too large."},
	ErrAttachmentCountInvalid: {Code: ErrAttachmentCountInvalid, Message: "A message may carry between 1 and %d attachments."},
	ErrAttachmentKeyInvalid:   {Code: ErrAttachmentKeyInvalid, Message: "Invalid attachment."},

	// 3xxx: User, Session, and Security Errors
	ErrInvalidUsername:     {Code: ErrInvalidUsername, Message: "Invalid username."},
	ErrInvalidPassword:     {Code: ErrInvalidPassword, Message: "Invalid password."},
	ErrUsernameTaken:       {Code: ErrUsernameTaken, Message: "Username is already taken."},
	ErrInvalidCredentials:  {Code: ErrInvalidCredentials, Message: "Invalid username or password."},
	ErrInvalidRefreshToken: {Code: ErrInvalidRefreshToken, Message: "Invalid refresh token.", Status: http.StatusUnauthorized},
	ErrConnectionRejected:  {Code: ErrConnectionRejected, Message: "Connection rejected: invalid or missing access token.", Status: http.StatusUnauthorized},
	ErrUnauthorized:        {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},

	// 5xxx: Internal System Errors
	ErrUnknown:            {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrStorageUnavailable: {Code: ErrStorageUnavailable, Message: "Attachment storage is unavailable.", Status: http.StatusServiceUnavailable},
}
