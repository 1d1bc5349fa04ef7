package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"systemdwake/cmd/wakectl/commands"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := commands.NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "wakectl:", err)
		cancel()
		os.Exit(commands.ExitCode(err))
	}
}
