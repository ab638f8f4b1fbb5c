package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"trade_integrity/cmd/checker/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
