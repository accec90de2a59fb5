package client

import "fmt"

// TransportError is a network or HTTP failure with no actionable server
// message. Status is 0 when the request never produced a response.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to %s", e.Op)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ValidationError carries the store's own explanation of why a create or
// update payload was rejected. Message is shown to the user verbatim.
type ValidationError struct {
	Status  int
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
