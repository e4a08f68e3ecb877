package errors

import "net/http"

// ErrorCode identifies a class of failure surfaced to API clients.
type ErrorCode int32

const (
	ErrorCode_UNKNOWN ErrorCode = iota
	ErrorCode_INTERNAL
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_NOT_FOUND
	ErrorCode_CONFLICT
	ErrorCode_UNAUTHENTICATED
	ErrorCode_AUTH_INVALID_TOKEN
	ErrorCode_AUTH_TOKEN_EXPIRED

	// Analysis pipeline
	ErrorCode_UNSUPPORTED_FILE_TYPE
	ErrorCode_EXTRACTION_FAILED
	ErrorCode_REQUEST_FAILED
	ErrorCode_RATE_LIMITED
	ErrorCode_CREDITS_EXHAUSTED
	ErrorCode_MALFORMED_ANALYSIS
	ErrorCode_PERSISTENCE_FAILED
	ErrorCode_ANALYSIS_IN_PROGRESS
	ErrorCode_MEETING_CANCELLED
	ErrorCode_TRANSCRIPT_LOCKED
	ErrorCode_CANCELLED
)

// ErrorCodeInfo contains metadata about an error code.
type ErrorCodeInfo struct {
	Name       string
	HTTPStatus int
	Retryable  bool
	// Message is safe to show to end users.
	Message string
}

// ErrorCodeRegistry maps error codes to their metadata.
var ErrorCodeRegistry = map[ErrorCode]ErrorCodeInfo{
	ErrorCode_UNKNOWN:            {Name: "UNKNOWN", HTTPStatus: http.StatusInternalServerError, Message: "Unknown error"},
	ErrorCode_INTERNAL:           {Name: "INTERNAL", HTTPStatus: http.StatusInternalServerError, Message: "Internal server error"},
	ErrorCode_INVALID_ARGUMENT:   {Name: "INVALID_ARGUMENT", HTTPStatus: http.StatusBadRequest, Message: "Invalid request"},
	ErrorCode_NOT_FOUND:          {Name: "NOT_FOUND", HTTPStatus: http.StatusNotFound, Message: "Resource not found"},
	ErrorCode_CONFLICT:           {Name: "CONFLICT", HTTPStatus: http.StatusConflict, Message: "Resource conflict"},
	ErrorCode_UNAUTHENTICATED:    {Name: "UNAUTHENTICATED", HTTPStatus: http.StatusUnauthorized, Message: "Authentication required"},
	ErrorCode_AUTH_INVALID_TOKEN: {Name: "AUTH_INVALID_TOKEN", HTTPStatus: http.StatusUnauthorized, Message: "Invalid authentication token"},
	ErrorCode_AUTH_TOKEN_EXPIRED: {Name: "AUTH_TOKEN_EXPIRED", HTTPStatus: http.StatusUnauthorized, Message: "Authentication token has expired"},

	ErrorCode_UNSUPPORTED_FILE_TYPE: {
		Name:       "UNSUPPORTED_FILE_TYPE",
		HTTPStatus: http.StatusBadRequest,
		Message:    "Only plain text and PDF transcripts are supported",
	},
	ErrorCode_EXTRACTION_FAILED: {
		Name:       "EXTRACTION_FAILED",
		HTTPStatus: http.StatusInternalServerError,
		Message:    "Could not read the transcript file, please upload it again",
	},
	ErrorCode_REQUEST_FAILED: {
		Name:       "REQUEST_FAILED",
		HTTPStatus: http.StatusInternalServerError,
		Retryable:  true,
		Message:    "The analysis service could not be reached",
	},
	ErrorCode_RATE_LIMITED: {
		Name:       "RATE_LIMITED",
		HTTPStatus: http.StatusTooManyRequests,
		Message:    "Too many analysis requests, try again later",
	},
	ErrorCode_CREDITS_EXHAUSTED: {
		Name:       "CREDITS_EXHAUSTED",
		HTTPStatus: http.StatusPaymentRequired,
		Message:    "Analysis credits are exhausted, contact the administrator",
	},
	ErrorCode_MALFORMED_ANALYSIS: {
		Name:       "MALFORMED_ANALYSIS",
		HTTPStatus: http.StatusInternalServerError,
		Retryable:  true,
		Message:    "The meeting analysis failed",
	},
	ErrorCode_PERSISTENCE_FAILED: {
		Name:       "PERSISTENCE_FAILED",
		HTTPStatus: http.StatusInternalServerError,
		Retryable:  true,
		Message:    "The analysis could not be saved, run it again",
	},
	ErrorCode_ANALYSIS_IN_PROGRESS: {
		Name:       "ANALYSIS_IN_PROGRESS",
		HTTPStatus: http.StatusConflict,
		Retryable:  true,
		Message:    "An analysis for this meeting is already running",
	},
	ErrorCode_MEETING_CANCELLED: {
		Name:       "MEETING_CANCELLED",
		HTTPStatus: http.StatusConflict,
		Message:    "The meeting was cancelled",
	},
	ErrorCode_TRANSCRIPT_LOCKED: {
		Name:       "TRANSCRIPT_LOCKED",
		HTTPStatus: http.StatusConflict,
		Message:    "The transcript was already analyzed",
	},
	ErrorCode_CANCELLED: {
		Name:       "CANCELLED",
		HTTPStatus: 499,
		Message:    "Request cancelled",
	},
}

func (c ErrorCode) String() string {
	if info, ok := ErrorCodeRegistry[c]; ok {
		return info.Name
	}
	return ErrorCodeRegistry[ErrorCode_UNKNOWN].Name
}

// HTTPStatus returns the status registered for the code.
func (c ErrorCode) HTTPStatus() int {
	if info, ok := ErrorCodeRegistry[c]; ok {
		return info.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsRetryable reports whether re-running the whole operation may succeed.
func (c ErrorCode) IsRetryable() bool {
	return ErrorCodeRegistry[c].Retryable
}

// UserMessage returns the end-user facing message for the code.
func (c ErrorCode) UserMessage() string {
	if info, ok := ErrorCodeRegistry[c]; ok {
		return info.Message
	}
	return ErrorCodeRegistry[ErrorCode_UNKNOWN].Message
}
