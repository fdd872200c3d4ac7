package transport

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"
)

// maxFrame caps a single frame at 16 MiB.
const maxFrame = 1 << 24

// NewFrameConn wraps a stream connection with length-prefixed framing
// (u32 LE). Used by every transport built on a net.Conn.
func NewFrameConn(c net.Conn) Conn {
	return &frameConn{c: c, br: bufio.NewReader(c), bw: bufio.NewWriter(c)}
}

type frameConn struct {
	mu sync.Mutex
	c  net.Conn
	br *bufio.Reader
	bw *bufio.Writer
}

func (s *frameConn) LocalAddr() net.Addr  { return s.c.LocalAddr() }
func (s *frameConn) RemoteAddr() net.Addr { return s.c.RemoteAddr() }
func (s *frameConn) Close() error         { return s.c.Close() }

func (s *frameConn) SendBytes(b []byte) error {
	if len(b) > maxFrame {
		return errors.New("transport: frame too large")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var lenbuf [4]byte
	binary.LittleEndian.PutUint32(lenbuf[:], uint32(len(b)))
	if _, err := s.bw.Write(lenbuf[:]); err != nil {
		return err
	}
	if _, err := s.bw.Write(b); err != nil {
		return err
	}
	return s.bw.Flush()
}

func (s *frameConn) RecvBytes() ([]byte, error) {
	var lenbuf [4]byte
	if _, err := io.ReadFull(s.br, lenbuf[:]); err != nil {
		return nil, err
	}
	n := int(binary.LittleEndian.Uint32(lenbuf[:]))
	if n > maxFrame {
		return nil, errors.New("transport: invalid frame size")
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.br, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
