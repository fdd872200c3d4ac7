package wire

import (
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Envelope is a header + payload wrapper for a single frame transfer.
type Envelope struct {
	Header  Header
	Payload []byte
}

// NewEnvelope builds a frame of the given type around an encoded payload.
func NewEnvelope(msgType uint8, correlation [16]byte, payload []byte) Envelope {
	return Envelope{
		Header: Header{
			Version:     Version,
			Type:        msgType,
			PayloadLen:  uint32(len(payload)),
			Correlation: correlation,
		},
		Payload: payload,
	}
}

// NewCorrelation generates a random 16-byte frame correlation id.
func NewCorrelation() [16]byte { return [16]byte(uuid.New()) }

// EncodeFrame returns header+payload as a single byte slice.
func (e *Envelope) EncodeFrame() ([]byte, error) {
	e.Header.PayloadLen = uint32(len(e.Payload))
	hb, err := e.Header.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out := make([]byte, headerSize+len(e.Payload))
	copy(out, hb)
	copy(out[headerSize:], e.Payload)
	return out, nil
}

// DecodeFrame parses a single frame from buf.
func (e *Envelope) DecodeFrame(buf []byte) error {
	if len(buf) < headerSize {
		return ErrShortFrame
	}
	if err := e.Header.UnmarshalBinary(buf[:headerSize]); err != nil {
		return err
	}
	need := int(e.Header.PayloadLen)
	if need > (1 << 24) {
		return fmt.Errorf("wire: payload too large: %d", need)
	}
	if headerSize+need > len(buf) {
		return io.ErrUnexpectedEOF
	}
	e.Payload = append(e.Payload[:0], buf[headerSize:headerSize+need]...)
	return nil
}
