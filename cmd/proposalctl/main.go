package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/roofrecharge/proposal-generator/cmd/proposalctl/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
