package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskwire/pkg/binder"
	"taskwire/pkg/client"
	"taskwire/pkg/transport"
	"taskwire/pkg/transport/quic"
	"taskwire/pkg/transport/tcp"
	"taskwire/pkg/transport/winpipe"
)

func main() {
	network := flag.String("network", "tcp", "transport network: tcp|quic|winpipe")
	addr := flag.String("addr", "127.0.0.1:7600", "address of the remote execution service")
	taskType := flag.String("type", "Echo", "task type to run")
	params := flag.String("params", "hi", "task parameters")
	id := flag.String("id", "", "logical request id (generated when empty)")
	budget := flag.Duration("budget", 10*time.Minute, "execution budget, bind time included")
	interrupt := flag.Bool("interrupt", false, "send an interrupt for -id instead of starting work")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	zap.ReplaceGlobals(logger)
	defer logger.Sync()

	treg := transport.NewRegistry()
	treg.Register(tcp.New())
	treg.Register(quic.New())
	treg.Register(winpipe.New())

	e := client.New(binder.New(treg), client.WithBudget(*budget))
	ep := transport.Endpoint{Network: *network, Address: *addr}
	ctx := context.Background()

	if *interrupt {
		if *id == "" {
			fatalf("interrupt needs -id")
		}
		if _, err := e.Interrupt(ctx, ep, *id).Await(ctx); err != nil {
			fatalf("interrupt: %v", err)
		}
		fmt.Println("interrupted", *id)
		return
	}

	logicalID := *id
	if logicalID == "" {
		logicalID = uuid.NewString()
	}
	fmt.Println("logical id:", logicalID)

	fut := e.Start(ctx, client.Descriptor{
		ID:       logicalID,
		Type:     *taskType,
		Params:   []byte(*params),
		Endpoint: ep,
	})
	resp, err := fut.Await(ctx)
	if err != nil {
		fatalf("start: %v", err)
	}
	fmt.Printf("status: %s\n", resp.Status)
	if len(resp.Output) > 0 {
		fmt.Printf("output: %s\n", resp.Output)
	}
	if resp.Error != "" {
		fmt.Printf("error: %s\n", resp.Error)
	}
}

func fatalf(format string, a ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
