package cmd

import (
	"context"
	"strings"
	"time"
)

// line renders the command with its args appended as quoted shell words.
func (b *bashTask) line() string {
	if len(b.Args) == 0 {
		return b.Command
	}
	quoted := make([]string, 0, len(b.Args))
	for _, a := range b.Args {
		quoted = append(quoted, shellQuote(a))
	}
	return strings.TrimSpace(b.Command + " " + strings.Join(quoted, " "))
}

// exec runs the command once and returns its exit status verbatim.
func (b *bashTask) exec(ctx context.Context, client hostClient, defTimeout time.Duration) (int, error) {
	return remoteExec(ctx, client, b.line(), perTaskTimeout(b.Timeout, defTimeout))
}
