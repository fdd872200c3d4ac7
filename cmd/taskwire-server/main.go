package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"taskwire/pkg/config"
	"taskwire/pkg/observability"
	"taskwire/pkg/server"
	"taskwire/pkg/transport"
	"taskwire/pkg/transport/mem"
	"taskwire/pkg/transport/quic"
	"taskwire/pkg/transport/tcp"
	"taskwire/pkg/transport/winpipe"
	"taskwire/pkg/wire"
)

func main() {
	cfgPath := flag.String("config", "", "path to YAML config (optional)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fatalf("load config: %v", err)
	}
	logger, err := observability.SetupLogger(cfg.Log)
	if err != nil {
		fatalf("setup logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	treg := transport.NewRegistry()
	treg.Register(mem.New())
	treg.Register(tcp.New())
	treg.Register(quic.New())
	treg.Register(winpipe.New())

	target := server.NewTarget(sampleRegistry())

	for _, lc := range cfg.Server.Listeners {
		tr, err := treg.Get(lc.Network)
		if err != nil {
			fatalf("listener %s: %v", lc.Network, err)
		}
		l, err := tr.Listen(ctx, lc.Address)
		if err != nil {
			fatalf("listen %s://%s: %v", lc.Network, lc.Address, err)
		}
		go func(l transport.Listener) {
			if err := target.Serve(ctx, l); err != nil && ctx.Err() == nil {
				zap.L().Error("serve stopped", zap.Error(err))
			}
		}(l)
		zap.L().Info("listening", zap.String("network", lc.Network), zap.String("addr", l.Addr().String()))
	}

	<-ctx.Done()
	zap.L().Info("shutting down")
}

// sampleRegistry registers the built-in tasks every server host ships with.
func sampleRegistry() *server.Registry {
	reg := server.NewRegistry()
	reg.RegisterRunner("Echo", func(ctx context.Context, req wire.Request) (wire.Response, error) {
		return wire.Response{Status: wire.StatusSuccess, Output: req.Params}, nil
	})
	reg.RegisterRunner("Sleep", func(ctx context.Context, req wire.Request) (wire.Response, error) {
		d, err := time.ParseDuration(strings.TrimSpace(string(req.Params)))
		if err != nil {
			return wire.Response{Status: wire.StatusFailure, Error: "bad duration: " + err.Error()}, nil
		}
		select {
		case <-time.After(d):
			return wire.Response{Status: wire.StatusSuccess, Output: []byte("slept " + d.String())}, nil
		case <-ctx.Done():
			return wire.Response{}, ctx.Err()
		}
	})
	return reg
}

func fatalf(format string, a ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
