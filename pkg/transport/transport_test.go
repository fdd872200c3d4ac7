package transport

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"
)

type fakeTransport struct{ network string }

func (f fakeTransport) Network() string { return f.network }
func (f fakeTransport) Listen(ctx context.Context, address string) (Listener, error) {
	return nil, errors.New("not implemented")
}
func (f fakeTransport) Dial(ctx context.Context, address string) (Conn, error) {
	return nil, errors.New("not implemented")
}

func TestEndpointValid(t *testing.T) {
	cases := []struct {
		ep   Endpoint
		want bool
	}{
		{Endpoint{"mem", "svc"}, true},
		{Endpoint{"", "svc"}, false},
		{Endpoint{"mem", ""}, false},
		{Endpoint{}, false},
	}
	for _, c := range cases {
		if got := c.ep.Valid(); got != c.want {
			t.Fatalf("Valid(%v) = %v", c.ep, got)
		}
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeTransport{network: "mem"})
	r.Register(fakeTransport{network: "tcp"})

	if _, err := r.Get("mem"); err != nil {
		t.Fatalf("Get(mem): %v", err)
	}
	if _, err := r.Get("bogus"); !errors.Is(err, ErrUnknownNetwork) {
		t.Fatalf("Get(bogus) = %v", err)
	}
	if got := len(r.Networks()); got != 2 {
		t.Fatalf("Networks() len = %d", got)
	}
}

func TestFrameConnRoundtrip(t *testing.T) {
	a, b := net.Pipe()
	ca, cb := NewFrameConn(a), NewFrameConn(b)
	defer ca.Close()
	defer cb.Close()

	payloads := [][]byte{[]byte("one"), {}, bytes.Repeat([]byte{0xAB}, 4096)}
	done := make(chan error, 1)
	go func() {
		for _, p := range payloads {
			if err := ca.SendBytes(p); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	for _, want := range payloads {
		got, err := cb.RecvBytes()
		if err != nil {
			t.Fatalf("recv: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("frame mismatch: %d vs %d bytes", len(got), len(want))
		}
	}
	if err := <-done; err != nil {
		t.Fatalf("send: %v", err)
	}
}

func TestFrameConnRejectsOversized(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()
	ca := NewFrameConn(a)
	if err := ca.SendBytes(make([]byte, maxFrame+1)); err == nil {
		t.Fatalf("expected oversized frame rejection")
	}
}
