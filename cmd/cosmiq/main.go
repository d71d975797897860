package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/oneiriq/cosmiq-graphql/internal/cli"
)

func main() {
	// Set up context with signal handling so a retry wait in progress is
	// aborted rather than resumed.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
