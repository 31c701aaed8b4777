package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cedana/netbench/cmd"
)

// Set by the linker at build time
var version = "dev"

func main() {
	// Grandparent context to deal with OS interrupts
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx, version); err != nil {
		os.Exit(1)
	}
}
