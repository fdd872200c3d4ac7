// Package transport abstracts the byte channels a dispatch exchange crosses.
// Every implementation delivers whole frames: one SendBytes corresponds to
// exactly one RecvBytes on the far side.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
)

// Endpoint is the two-part address of a remote execution service: the
// transport network it listens on and the address within that network.
type Endpoint struct {
	Network string // "mem", "tcp", "quic", "winpipe"
	Address string // transport-dependent address string
}

func (e Endpoint) String() string { return e.Network + "://" + e.Address }

// Valid reports whether both parts of the endpoint are present.
func (e Endpoint) Valid() bool { return e.Network != "" && e.Address != "" }

// Conn is a single-use framed connection. One exchange per connection; the
// owner closes it when the exchange settles. Exactly one reader and one
// writer goroutine are expected.
type Conn interface {
	// SendBytes sends one message frame as opaque bytes.
	SendBytes([]byte) error
	// RecvBytes receives the next message frame and returns its bytes.
	RecvBytes() ([]byte, error)
	LocalAddr() net.Addr
	RemoteAddr() net.Addr
	Close() error
}

// Listener accepts inbound connections.
type Listener interface {
	// Accept blocks until an inbound connection is available or ctx is done.
	Accept(ctx context.Context) (Conn, error)
	// Addr returns the local listening address.
	Addr() net.Addr
	// Close stops the listener and unblocks Accept.
	Close() error
}

// Transport provides dialing/listening for a specific network.
type Transport interface {
	Network() string
	// Listen starts accepting inbound connections on address.
	Listen(ctx context.Context, address string) (Listener, error)
	// Dial creates an outbound connection to address.
	Dial(ctx context.Context, address string) (Conn, error)
}

// ErrUnknownNetwork reports an endpoint naming a network no transport serves.
var ErrUnknownNetwork = errors.New("transport: unknown network")

// Registry maps network names to transports.
type Registry struct {
	mu  sync.RWMutex
	byN map[string]Transport
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry { return &Registry{byN: make(map[string]Transport)} }

// Register adds a transport under its network name, replacing any previous one.
func (r *Registry) Register(t Transport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byN[t.Network()] = t
}

// Get returns the transport serving a network.
func (r *Registry) Get(network string) (Transport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t := r.byN[network]
	if t == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, network)
	}
	return t, nil
}

// Networks lists the registered network names.
func (r *Registry) Networks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byN))
	for n := range r.byN {
		out = append(out, n)
	}
	return out
}
