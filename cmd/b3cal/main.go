// Command b3cal queries the Brazilian financial-market holiday calendar and
// maintains its dataset.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aristath/b3cal/cmd/b3cal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.NewRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
