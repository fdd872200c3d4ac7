package server

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"taskwire/pkg/transport"
	"taskwire/pkg/wire"
)

// Serve accepts connections from l and handles one exchange per connection
// until ctx is done or the listener fails.
func (t *Target) Serve(ctx context.Context, l transport.Listener) error {
	t.log.Info("serving", zap.String("addr", l.Addr().String()))
	for {
		conn, err := l.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		go t.serveConn(conn)
	}
}

// serveConn reads exactly one request frame and routes it. The reply channel
// owns the connection from here on.
func (t *Target) serveConn(conn transport.Conn) {
	frame, err := conn.RecvBytes()
	if err != nil {
		t.log.Debug("connection dropped before request", zap.Error(err))
		_ = conn.Close()
		return
	}
	var env wire.Envelope
	if err := env.DecodeFrame(frame); err != nil {
		// Malformed frame: report through the same failure path, best effort.
		t.log.Warn("malformed request frame", zap.Error(err))
		reply := &connReply{conn: conn, corr: env.Header.Correlation, log: t.log}
		reply.Failure(err)
		return
	}

	switch env.Header.Type {
	case wire.MsgStart:
		t.StartWork(env.Payload, &connReply{conn: conn, corr: env.Header.Correlation, log: t.log})
	case wire.MsgInterrupt:
		t.Interrupt(env.Payload, &connReply{conn: conn, corr: env.Header.Correlation, ack: true, log: t.log})
	default:
		t.log.Warn("unexpected request type", zap.Uint8("type", env.Header.Type))
		reply := &connReply{conn: conn, corr: env.Header.Correlation, log: t.log}
		reply.Failure(fmt.Errorf("server: unexpected request type %d", env.Header.Type))
	}
}

// connReply delivers one outcome frame on the borrowed connection and closes
// it. First call wins; the rest are no-ops.
type connReply struct {
	conn transport.Conn
	corr [16]byte
	ack  bool // reply with MsgAck instead of MsgResult
	log  *zap.Logger
	once sync.Once
}

func (r *connReply) Success(b []byte) {
	r.once.Do(func() {
		defer r.conn.Close()
		msgType := uint8(wire.MsgResult)
		if r.ack {
			msgType = wire.MsgAck
			b = nil
		}
		r.send(wire.NewEnvelope(msgType, r.corr, b))
	})
}

func (r *connReply) Failure(err error) {
	r.once.Do(func() {
		defer r.conn.Close()
		payload, merr := wire.EncodeFailure(wire.Failure{Message: err.Error()})
		if merr != nil {
			r.log.Error("unable to encode failure", zap.Error(merr))
			return
		}
		r.send(wire.NewEnvelope(wire.MsgError, r.corr, payload))
	})
}

func (r *connReply) send(env wire.Envelope) {
	frame, err := env.EncodeFrame()
	if err != nil {
		r.log.Error("unable to encode reply", zap.Error(err))
		return
	}
	if err := r.conn.SendBytes(frame); err != nil {
		r.log.Warn("unable to deliver reply", zap.Error(err))
	}
}
