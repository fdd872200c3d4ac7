package binder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskwire/pkg/transport"
	"taskwire/pkg/transport/mem"
)

func newTestRegistry(t *testing.T) (*transport.Registry, *mem.Transport) {
	t.Helper()
	reg := transport.NewRegistry()
	mt := mem.New()
	reg.Register(mt)
	return reg, mt
}

func TestResolveSuccess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg, mt := newTestRegistry(t)
	l, err := mt.Listen(ctx, "svc")
	require.NoError(t, err)
	defer l.Close()

	b := New(reg)
	att := b.Bind(ctx, transport.Endpoint{Network: "mem", Address: "svc"})
	conn, err := att.Future().Await(ctx)
	require.NoError(t, err)
	require.NotNil(t, conn)
	assert.Equal(t, Bound, att.State())
	_ = conn.Close()
}

func TestResolveRefused(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry(t)

	b := New(reg)
	att := b.Bind(ctx, transport.Endpoint{Network: "mem", Address: "nobody"})
	_, err := att.Future().Await(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBindRefused)
	assert.Equal(t, Failed, att.State())
}

func TestResolveUnknownNetwork(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry(t)

	b := New(reg)
	fut := b.Resolve(ctx, transport.Endpoint{Network: "carrier-pigeon", Address: "x"})
	_, err := fut.Await(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBindRefused)
}

func TestDisconnectedMidCall(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg, mt := newTestRegistry(t)
	l, err := mt.Listen(ctx, "svc")
	require.NoError(t, err)
	defer l.Close()

	b := New(reg)
	att := b.Bind(ctx, transport.Endpoint{Network: "mem", Address: "svc"})
	conn, err := att.Future().Await(ctx)
	require.NoError(t, err)

	srv, err := l.Accept(ctx)
	require.NoError(t, err)
	_ = srv.Close() // remote side dies

	_, err = conn.RecvBytes()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDisconnected)
	assert.Equal(t, Disconnected, att.State())
}

func TestConcurrentResolvesAreIndependent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg, mt := newTestRegistry(t)
	l, err := mt.Listen(ctx, "svc")
	require.NoError(t, err)
	defer l.Close()

	b := New(reg)
	ep := transport.Endpoint{Network: "mem", Address: "svc"}
	a1 := b.Bind(ctx, ep)
	a2 := b.Bind(ctx, ep)

	awaitCtx, awaitCancel := context.WithTimeout(ctx, 2*time.Second)
	defer awaitCancel()
	c1, err := a1.Future().Await(awaitCtx)
	require.NoError(t, err)
	c2, err := a2.Future().Await(awaitCtx)
	require.NoError(t, err)
	if c1 == c2 {
		t.Fatalf("attempts shared a connection")
	}
	_ = c1.Close()
	_ = c2.Close()
}

func TestBindDoesNotRetry(t *testing.T) {
	ctx := context.Background()
	reg, mt := newTestRegistry(t)

	b := New(reg)
	att := b.Bind(ctx, transport.Endpoint{Network: "mem", Address: "late"})
	_, err := att.Future().Await(ctx)
	require.Error(t, err)

	// A listener appearing later must not resurrect the failed attempt.
	l, listenErr := mt.Listen(ctx, "late")
	require.NoError(t, listenErr)
	defer l.Close()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, Failed, att.State())
	if !errors.Is(err, ErrBindRefused) {
		t.Fatalf("err = %v", err)
	}
}
