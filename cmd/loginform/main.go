// Command loginform serves the login form over HTTP or in a terminal and
// manages the accounts it checks against.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "loginform: %v\n", err)
		stop()
		os.Exit(1)
	}
}
