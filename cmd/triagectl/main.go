// Command triagectl inspects the triage working set from a terminal.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lorrc/triage-desk/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Run(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()
	os.Exit(code)
}
