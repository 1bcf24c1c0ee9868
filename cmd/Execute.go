package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Execute runs the root command. Hosts still in flight see a cancelled
// context on SIGINT/SIGTERM. Exit code 2 means some hosts failed; 1 means the
// run could not start.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// cobra keeps the context on rootCmd; don't leave a cancelled one behind.
	defer rootCmd.SetContext(context.Background())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errHostsFailed) {
			exitFunc(2)
			return
		}
		_, _ = fmt.Fprintln(os.Stderr, err)
		exitFunc(1)
		return
	}
}
