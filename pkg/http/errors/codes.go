package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeTokenExpired           = "token_expired"
	ErrCodeAuthenticationRequired = "authentication_required"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"

	// Resource errors
	ErrCodeNotFound      = "not_found"
	ErrCodeAlreadyExists = "already_exists"

	// Business logic errors
	ErrCodeLoginFailed   = "login_failed"
	ErrCodeRefreshFailed = "refresh_failed"
	ErrCodeResetFailed   = "reset_failed"

	// AI generation errors
	ErrCodeGenerationFailed = "generation_failed"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeStorageFailure     = "storage_failure"
	ErrCodeServiceUnavailable = "service_unavailable"

	// OAuth errors
	ErrCodeOAuthNotConfigured  = "oauth_not_configured"
	ErrCodeOAuthStartFailed    = "oauth_start_failed"
	ErrCodeOAuthCallbackFailed = "oauth_callback_failed"
	ErrCodeOAuthMissingCode    = "missing_code"
	ErrCodeOAuthInvalidState   = "invalid_state"
)
