package dto

import "time"

// ErrorResponse is the standardized JSON error body returned by every
// failing endpoint.
//
// It also implements the error interface so handlers and middleware can
// pass it around as a regular error value.
type ErrorResponse struct {
	Message      string    `json:"message" example:"no data found"`
	ErrorDetails string    `json:"error,omitempty" example:"sql: no rows in result set"`
	Timestamp    time.Time `json:"timestamp" example:"2023-01-15T10:30:00Z"`
}

func (e ErrorResponse) Error() string {
	if e.ErrorDetails == "" {
		return e.Message
	}
	return e.Message + ": " + e.ErrorDetails
}

// NewErrorResponse builds an ErrorResponse from a human message and an
// optional underlying error.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}
