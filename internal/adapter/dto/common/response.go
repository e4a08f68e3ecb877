package common

// SuccessResponse wraps every successful /v1 response
type SuccessResponse struct {
	Code    int         `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse represents a standard /v1 error response
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// AnalyzeErrorResponse is the error body of POST /analyze
type AnalyzeErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}
