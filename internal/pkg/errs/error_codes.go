/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both internally
within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Attachment and Content Errors
const (
	// ErrMessageContentTooLong indicates that the message content exceeded the maximum length limit.
	ErrMessageContentTooLong = 2201

	// ErrFileSizeTooLarge indicates that an attachment exceeded the maximum allowed size.
	ErrFileSizeTooLarge = 2202

	// ErrAttachmentCountInvalid indicates an invalid number of attachments in a single message.
	ErrAttachmentCountInvalid = 2203

	// ErrAttachmentKeyInvalid indicates that an attachment key does not belong to the expected namespace.
	ErrAttachmentKeyInvalid = 2204
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrInvalidUsername indicates that the supplied username does not satisfy the format rules.
	ErrInvalidUsername = 3001

	// ErrInvalidPassword indicates that the supplied password does not satisfy the length rules.
	ErrInvalidPassword = 3002

	// ErrUsernameTaken indicates a registration attempt with an already registered username.
	ErrUsernameTaken = 3003

	// ErrInvalidCredentials indicates a login attempt with an unknown username or wrong password.
	ErrInvalidCredentials = 3004

	// ErrInvalidRefreshToken indicates an absent, mismatched, or expired refresh token.
	ErrInvalidRefreshToken = 3005

	// ErrConnectionRejected indicates that a connection upgrade carried no valid access token.
	ErrConnectionRejected = 3006

	// ErrUnauthorized indicates that an authenticated identity is required but missing.
	ErrUnauthorized = 3007
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStorageUnavailable indicates that the attachment storage backend is not configured or failed.
	ErrStorageUnavailable = 5001
)
