package wire

import (
	"fmt"

	"taskwire/pkg/wire/codec"
)

// wireCodec is the canonical codec all boundary shells are encoded with.
var wireCodec = codec.CBOR()

// EncodeRequest serializes a start request shell.
func EncodeRequest(r Request) ([]byte, error) { return wireCodec.Marshal(r) }

// DecodeRequest parses a start request shell.
func DecodeRequest(b []byte) (Request, error) {
	var r Request
	if err := wireCodec.Unmarshal(b, &r); err != nil {
		return Request{}, fmt.Errorf("wire: decode request: %w", err)
	}
	return r, nil
}

// EncodeResponse serializes a task outcome.
func EncodeResponse(r Response) ([]byte, error) { return wireCodec.Marshal(r) }

// DecodeResponse parses a task outcome.
func DecodeResponse(b []byte) (Response, error) {
	var r Response
	if err := wireCodec.Unmarshal(b, &r); err != nil {
		return Response{}, fmt.Errorf("wire: decode response: %w", err)
	}
	return r, nil
}

// EncodeInterrupt serializes an interrupt request shell.
func EncodeInterrupt(i Interrupt) ([]byte, error) { return wireCodec.Marshal(i) }

// DecodeInterrupt parses an interrupt request shell.
func DecodeInterrupt(b []byte) (Interrupt, error) {
	var i Interrupt
	if err := wireCodec.Unmarshal(b, &i); err != nil {
		return Interrupt{}, fmt.Errorf("wire: decode interrupt: %w", err)
	}
	return i, nil
}

// EncodeFailure serializes an error payload for a MsgError frame.
func EncodeFailure(f Failure) ([]byte, error) { return wireCodec.Marshal(f) }

// DecodeFailure parses an error payload.
func DecodeFailure(b []byte) (Failure, error) {
	var f Failure
	if err := wireCodec.Unmarshal(b, &f); err != nil {
		return Failure{}, fmt.Errorf("wire: decode failure: %w", err)
	}
	return f, nil
}
