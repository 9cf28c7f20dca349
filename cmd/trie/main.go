package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kumarlokesh/trie-server/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Errors have already been printed by the command
	if err := cli.NewRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
