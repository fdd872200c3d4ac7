package mem

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestDialListenExchange(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr := New()
	l, err := tr.Listen(ctx, "svc")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()

	cli, err := tr.Dial(ctx, "svc")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer cli.Close()

	srv, err := l.Accept(ctx)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	defer srv.Close()

	go func() { _ = cli.SendBytes([]byte("ping")) }()
	got, err := srv.RecvBytes()
	if err != nil {
		t.Fatalf("recv: %v", err)
	}
	if !bytes.Equal(got, []byte("ping")) {
		t.Fatalf("got %q", got)
	}

	go func() { _ = srv.SendBytes([]byte("pong")) }()
	got, err = cli.RecvBytes()
	if err != nil {
		t.Fatalf("recv reply: %v", err)
	}
	if !bytes.Equal(got, []byte("pong")) {
		t.Fatalf("got %q", got)
	}
}

func TestDialNoListener(t *testing.T) {
	tr := New()
	if _, err := tr.Dial(context.Background(), "nobody-home"); err == nil {
		t.Fatalf("expected dial error")
	}
}

func TestDuplicateListener(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tr := New()
	if _, err := tr.Listen(ctx, "svc"); err != nil {
		t.Fatalf("listen: %v", err)
	}
	if _, err := tr.Listen(ctx, "svc"); err == nil {
		t.Fatalf("expected duplicate listener error")
	}
}

func TestAcceptUnblocksOnClose(t *testing.T) {
	ctx := context.Background()
	tr := New()
	l, err := tr.Listen(ctx, "svc")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := l.Accept(ctx)
		errCh <- err
	}()
	time.Sleep(10 * time.Millisecond)
	_ = l.Close()

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatalf("expected accept error after close")
		}
	case <-time.After(time.Second):
		t.Fatalf("accept did not unblock")
	}
}
