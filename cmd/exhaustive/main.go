// Command exhaustive searches feature subsets for classifiers that hold up
// across independent datasets.
//
//	exhaustive run config.yaml
//	exhaustive estimate config.yaml --max-k 5 --max-hours 12
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
