package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// sshAdd hands keyPath to the running SSH agent so agent-mode hosts can
// authenticate with it. ssh-add's stdout is logged line by line.
func sshAdd(ctx context.Context, keyPath string) error {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "ssh-add", keyPath)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()

	logger := zerolog.Ctx(ctx)
	for _, line := range strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n") {
		if line != "" {
			logger.Info().Str("cmd", "ssh-add").Msg(line)
		}
	}
	if runErr != nil {
		return fmt.Errorf("ssh-add %s: %w (stderr: %s)", keyPath, runErr, bytes.TrimSpace(stderr.Bytes()))
	}
	return nil
}
