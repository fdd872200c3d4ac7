// Package wire defines the request/response shapes exchanged across the
// process boundary and the frame format that carries them. Payloads are
// opaque to every layer except the task that produced them.
package wire

import "errors"

// Status tags the outcome of one task execution.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusSuccess
	StatusFailure
	StatusRetry
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusRetry:
		return "retry"
	default:
		return "unknown"
	}
}

// Request asks the remote side to start one task. ID is the caller-chosen
// logical request id correlating start, result and interrupt.
type Request struct {
	ID     string            `cbor:"id"`
	Type   string            `cbor:"type"`
	Params []byte            `cbor:"params,omitempty"`
	Meta   map[string]string `cbor:"meta,omitempty"`
}

// Response carries the tagged outcome of one task back to the caller.
type Response struct {
	Status Status `cbor:"status"`
	Output []byte `cbor:"output,omitempty"`
	Error  string `cbor:"error,omitempty"`
}

// Interrupt asks the remote side to stop the task tracked under ID.
type Interrupt struct {
	ID string `cbor:"id"`
}

// Failure is the payload of a MsgError frame. Transport failures and remote
// task failures travel identically; callers distinguish them by message only.
type Failure struct {
	Message string `cbor:"message"`
}

// ErrShortFrame reports a frame too small to hold a header.
var ErrShortFrame = errors.New("wire: short frame")
