package stream

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed marks a record that is not a JSON object or lacks a
	// required field for its event type.
	ErrMalformed = errors.New("malformed stream record")

	// ErrUnknownEventType marks a record whose event_type is not recognised.
	ErrUnknownEventType = errors.New("unknown stream event type")
)

// DecodeError describes a single record that could not be decoded. It never
// ends the stream.
type DecodeError struct {
	// Kind is ErrMalformed or ErrUnknownEventType.
	Kind error
	// EventType is the discriminator value, when one could be read.
	EventType string
	// Record is the raw record as received.
	Record []byte
	// Reason is a short description of what was wrong.
	Reason string
}

func (e *DecodeError) Error() string {
	if e.EventType != "" {
		return fmt.Sprintf("%v (%s): %s", e.Kind, e.EventType, e.Reason)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Reason)
}

// Unwrap lets errors.Is match the Kind sentinel.
func (e *DecodeError) Unwrap() error {
	return e.Kind
}

// TransportError reports that the underlying connection failed before the
// stream ended. It is always the last outcome of a stream.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("chat stream transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func malformed(record []byte, eventType, format string, args ...any) *DecodeError {
	return &DecodeError{
		Kind:      ErrMalformed,
		EventType: eventType,
		Record:    record,
		Reason:    fmt.Sprintf(format, args...),
	}
}
