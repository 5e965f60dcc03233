package models

// Response status constants
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ErrorResponse represents a generic error reply
type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// NewErrorResponse builds an error reply
func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Status: StatusError, Error: message}
}
