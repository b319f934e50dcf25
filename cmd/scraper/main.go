package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

const (
	appName    = "rinkside-scraper"
	appVersion = "1.0.0"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
