package webhook

import (
	"fmt"
)

// NetworkError means the request could not be sent or the reply could not be
// read or decoded.
type NetworkError struct {
	Event string
	Err   error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("webhook %s: %v", e.Event, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// BackendError is a non-2xx reply from the gateway.
type BackendError struct {
	Event  string
	Status int
	Body   string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("API error %d", e.Status)
}

// IsServerError reports a 5xx status.
func (e *BackendError) IsServerError() bool {
	return e.Status >= 500 && e.Status < 600
}
