package logger

// Standard field names for consistent structured logging across quill-ls.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Protocol
	FieldMethod    = "method"
	FieldRequestID = "request_id"
	FieldState     = "state"

	// Documents
	FieldURI     = "uri"
	FieldVersion = "version"
	FieldLength  = "length"

	// Results
	FieldCount      = "count"
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError     = "error"
	FieldErrorCode = "error_code"
)
