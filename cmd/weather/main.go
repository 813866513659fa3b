package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/i474232898/jma-weather/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.ExecuteContext(ctx)
	stop()
	os.Exit(code)
}
