package dtos

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ChatErrorResponse is returned when a turn ran but could not be saved. Response carries the
// reply the turn computed.
type ChatErrorResponse struct {
	Detail   string `json:"detail"`
	Response string `json:"response"`
}
