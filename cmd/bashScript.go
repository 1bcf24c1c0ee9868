package cmd

import (
	"context"
	"time"
)

// exec runs every command of the script, even after one fails, and returns
// the first non-zero status seen (0 if all succeeded). A transport error
// stops the script immediately.
func (s *bashScriptTask) exec(ctx context.Context, client hostClient, defTimeout time.Duration) (int, error) {
	timeout := perTaskTimeout(s.Timeout, defTimeout)
	first := 0
	for _, command := range s.Script {
		status, err := remoteExec(ctx, client, command, timeout)
		if err != nil {
			return -1, err
		}
		if first == 0 && status > 0 {
			first = status
		}
	}
	return first, nil
}
