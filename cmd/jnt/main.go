// Command jnt tracks the verification checklist, preferences and daily
// digest of a job notification tracker.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/jobtracker/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil && !cli.IsReported(err) {
		fmt.Fprintf(os.Stderr, "jnt: %v\n", err)
	}
	os.Exit(cli.GetExitCode(err))
}
