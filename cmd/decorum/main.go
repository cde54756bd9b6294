package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/decorum/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "decorum:", err)
	}
	os.Exit(cli.ExitCode(err))
}
