package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// maxOutputLine bounds a single logged line of remote stdout.
const maxOutputLine = 1 << 20

// remoteExec opens a fresh channel on client, runs command, logs every stdout
// line at debug level and returns the remote exit status. Only transport
// failures are errors; a non-zero status is returned as a value.
//
// When timeout is positive, or ctx is cancelled first, the channel is closed
// and the context error is returned.
func remoteExec(ctx context.Context, client hostClient, command string, timeout time.Duration) (int, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	sess, err := client.NewSession()
	if err != nil {
		return -1, fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = sess.Close() }()

	type result struct {
		status int
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		status, err := streamExec(zerolog.Ctx(ctx), sess, command)
		ch <- result{status, err}
	}()

	select {
	case r := <-ch:
		return r.status, r.err
	case <-ctx.Done():
		// Closing the channel unblocks the reader goroutine.
		_ = sess.Close()
		return -1, ctx.Err()
	}
}

func streamExec(logger *zerolog.Logger, sess session, command string) (int, error) {
	stdout, err := sess.StdoutPipe()
	if err != nil {
		return -1, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := sess.Start(command); err != nil {
		return -1, fmt.Errorf("exec %q: %w", command, err)
	}
	if err := logLines(logger, stdout); err != nil {
		return -1, fmt.Errorf("read output of %q: %w", command, err)
	}
	status, err := sess.Wait()
	if err != nil {
		return -1, fmt.Errorf("wait for %q: %w", command, err)
	}
	return status, nil
}

// logLines drains r to end of stream, logging each line at debug level.
// Lines longer than maxOutputLine are cut there and flagged as truncated;
// the rest of such a line is read and dropped.
func logLines(logger *zerolog.Logger, r io.Reader) error {
	br := bufio.NewReaderSize(r, 64*1024)
	var (
		line      []byte
		truncated bool
	)
	emit := func() {
		ev := logger.Debug()
		if truncated {
			ev = ev.Bool("truncated", true)
		}
		ev.Msg(string(line))
		line, truncated = line[:0], false
	}
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			if len(line) > 0 || truncated {
				emit()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if room := maxOutputLine - len(line); len(chunk) > room {
			chunk = chunk[:room]
			truncated = true
		}
		line = append(line, chunk...)
		if !isPrefix {
			emit()
		}
	}
}
