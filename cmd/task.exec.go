package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// exec logs the task banner and runs the populated variant over client. The
// returned status follows remote convention: 0 is success, positive is a
// remote failure. Errors are reserved for transport and file failures.
func (t *task) exec(ctx context.Context, client hostClient, defTimeout time.Duration) (int, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().Msgf("--- %s ---", t.Name)

	e := t.TaskExec
	switch {
	case e.Bash != nil:
		return e.Bash.exec(ctx, client, defTimeout)
	case e.BashScript != nil:
		return e.BashScript.exec(ctx, client, defTimeout)
	case e.FileSync != nil:
		n, err := e.FileSync.exec(client, t.Dir)
		if err != nil {
			return -1, err
		}
		logger.Debug().Int64("bytes", n).Str("destination", e.FileSync.Destination).Msg("file synced")
		return 0, nil
	}
	return -1, fmt.Errorf("task %q has no task_exec", t.Name)
}
