package client

import (
	"errors"
	"fmt"

	"taskwire/pkg/transport"
	"taskwire/pkg/wire"
)

// RemoteError is a failure delivered by the remote side through the uniform
// error channel. Remote task failures and transport failures detected on the
// far side arrive identically; only the message tells them apart.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string { return "remote: " + e.Message }

var errCorrelationMismatch = errors.New("client: reply correlation mismatch")

// startDispatcher sends one MsgStart frame and waits for the reply.
func startDispatcher(payload []byte) Dispatcher {
	return exchange(wire.MsgStart, payload)
}

// interruptDispatcher sends one MsgInterrupt frame and waits for the ack.
func interruptDispatcher(payload []byte) Dispatcher {
	return exchange(wire.MsgInterrupt, payload)
}

func exchange(msgType uint8, payload []byte) Dispatcher {
	return func(conn transport.Conn, cb *Callback) error {
		env := wire.NewEnvelope(msgType, wire.NewCorrelation(), payload)
		frame, err := env.EncodeFrame()
		if err != nil {
			return err
		}
		if err := conn.SendBytes(frame); err != nil {
			return err
		}
		reply, err := conn.RecvBytes()
		if err != nil {
			return err
		}
		var renv wire.Envelope
		if err := renv.DecodeFrame(reply); err != nil {
			return err
		}
		if renv.Header.Correlation != env.Header.Correlation {
			return errCorrelationMismatch
		}
		switch renv.Header.Type {
		case wire.MsgResult:
			cb.Success(renv.Payload)
		case wire.MsgAck:
			cb.Success(nil)
		case wire.MsgError:
			f, err := wire.DecodeFailure(renv.Payload)
			if err != nil {
				return err
			}
			cb.Failure(&RemoteError{Message: f.Message})
		default:
			return fmt.Errorf("client: unexpected reply type %d", renv.Header.Type)
		}
		return nil
	}
}
