// Command systemd-wake is the program a wakectl timer fires. Its arguments are
// the scheduled program and that program's arguments; it runs them and exits
// with their status.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	logx "systemdwake/pkg/logx"
	"systemdwake/pkg/wake"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	level := os.Getenv("SYSTEMD_WAKE_LOG_LEVEL")
	cfg := logx.Config{Level: level, Console: !logx.UnderSystemd(), Journal: logx.UnderSystemd()}
	logs, log := logx.New(cfg)
	defer logs.Close()

	if unit := os.Getenv("INVOCATION_ID"); unit != "" {
		log = log.With(logx.String("invocation_id", unit))
	}

	code, err := wake.Launch(ctx, os.Args[1:], wake.LaunchOptions{Log: log.With(logx.String("comp", "launcher"))})
	if err != nil {
		log.Error("launch failed", logx.Err(err))
		fmt.Fprintln(os.Stderr, "systemd-wake:", err)
	}
	return code
}
