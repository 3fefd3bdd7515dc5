package gateway

import "fmt"

// Code classifies every failure the gateway can surface. Callers never see
// raw transport or HTTP errors; everything is normalized into this taxonomy
// before it leaves the gateway.
type Code string

const (
	NetworkError    Code = "NETWORK_ERROR"
	TimeoutError    Code = "TIMEOUT_ERROR"
	Unauthorized    Code = "UNAUTHORIZED"
	Forbidden       Code = "FORBIDDEN"
	NotFound        Code = "NOT_FOUND"
	ValidationError Code = "VALIDATION_ERROR"
	UnknownError    Code = "UNKNOWN_ERROR"
)

// catalogMessages are the default user-facing messages per code. A
// server-supplied message in the response body overrides the catalog entry.
var catalogMessages = map[Code]string{
	NetworkError:    "unable to reach the server",
	TimeoutError:    "the request timed out",
	Unauthorized:    "authentication required",
	Forbidden:       "you do not have access to this resource",
	NotFound:        "resource not found",
	ValidationError: "the request was invalid",
	UnknownError:    "an unexpected error occurred",
}

// APIError is the normalized form of any failed gateway request.
type APIError struct {
	Code    Code
	Message string
	Status  int // HTTP status, 0 for transport-level failures
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is lets errors.Is match against an *APIError carrying only a Code, e.g.
// errors.Is(err, &APIError{Code: Unauthorized}).
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

func newAPIError(code Code, status int, serverMessage string) *APIError {
	message := serverMessage
	if message == "" {
		message = catalogMessages[code]
	}
	return &APIError{Code: code, Message: message, Status: status}
}

// codeForStatus maps an HTTP status onto the taxonomy.
func codeForStatus(status int) Code {
	switch status {
	case 400:
		return ValidationError
	case 401:
		return Unauthorized
	case 403:
		return Forbidden
	case 404:
		return NotFound
	default:
		return UnknownError
	}
}
