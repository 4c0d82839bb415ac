// Command tingbok serves SKOS concept lookups over HTTP, MCP and the CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tingbok/tingbok/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, version); err != nil {
		stop()
		os.Exit(1)
	}
}
