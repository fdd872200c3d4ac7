//go:build !windows

// Package winpipe implements the transport over Windows named pipes.
// On other platforms the constructor returns an error.
package winpipe

import (
	"context"
	"errors"

	"taskwire/pkg/transport"
)

// ErrUnsupported reports that named pipes require Windows.
var ErrUnsupported = errors.New("winpipe: only supported on windows")

type Transport struct{}

func New() *Transport { return &Transport{} }

func (t *Transport) Network() string { return "winpipe" }

func (t *Transport) Listen(ctx context.Context, pipeName string) (transport.Listener, error) {
	return nil, ErrUnsupported
}

func (t *Transport) Dial(ctx context.Context, pipeName string) (transport.Conn, error) {
	return nil, ErrUnsupported
}
