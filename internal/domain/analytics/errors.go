package analytics

// Error codes attached to AppError values produced by this package.
const (
	CodeMissingCredential   = "missing_credential"
	CodeExternalUnavailable = "external_unavailable"
	CodeMalformedResponse   = "malformed_response"
	CodeInvalidInput        = "invalid_input"
)
