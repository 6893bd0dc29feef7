package response

// Response represents a standard API response format
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	State      string      `json:"state,omitempty"`    // current entity state on conflict errors
	Warnings   []string    `json:"warnings,omitempty"` // non-fatal side-effect failures
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// SuccessWithWarnings wraps the data and attaches non-fatal warnings, e.g.
// a failed PDF render after a send that already committed.
func SuccessWithWarnings(statusCode int, data interface{}, warnings []string) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
		Warnings:   warnings,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// ErrorWithState also reports the entity's current state so the caller can
// react to the conflict.
func ErrorWithState(statusCode int, err, state string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
		State:      state,
	}
}
