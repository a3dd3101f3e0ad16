package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// ValidationError reports a client-input problem: a missing body, a missing
// or malformed field, or a lookup target that could not be resolved.
type ValidationError struct {
	// Field names the offending input field, e.g. "SupplierId" or
	// "Items[2].ProductCode". Empty when the whole body is at fault.
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func invalidf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// UpstreamRejectedError is returned when the downstream order API answers
// with a non-success status. StatusCode and Body are passed through verbatim.
type UpstreamRejectedError struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func (e *UpstreamRejectedError) Error() string {
	return fmt.Sprintf("downstream rejected request with status %d", e.StatusCode)
}

// TransportError is a network-level failure reaching the downstream API.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: downstream unavailable: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError is returned when the downstream API answered with a success
// status but the body could not be parsed.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode downstream response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Outcome classifies the result of a pipeline run.
type Outcome string

const (
	OutcomeCreated               Outcome = "created"
	OutcomeValidationFailed      Outcome = "validation_failed"
	OutcomeUpstreamRejected      Outcome = "upstream_rejected"
	OutcomeTransportFailure      Outcome = "transport_failure"
	OutcomeDeserializationFailed Outcome = "deserialization_failed"
	OutcomeInternal              Outcome = "internal"
)

// Classify maps err to its Outcome. A nil error is OutcomeCreated.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeCreated
	}

	var (
		validationErr *ValidationError
		rejectedErr   *UpstreamRejectedError
		transportErr  *TransportError
		decodeErr     *DecodeError
	)
	switch {
	case errors.As(err, &validationErr):
		return OutcomeValidationFailed
	case errors.As(err, &rejectedErr):
		return OutcomeUpstreamRejected
	case errors.As(err, &transportErr):
		return OutcomeTransportFailure
	case errors.As(err, &decodeErr):
		return OutcomeDeserializationFailed
	default:
		return OutcomeInternal
	}
}
