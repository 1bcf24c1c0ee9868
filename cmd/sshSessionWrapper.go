package cmd

import (
	"errors"
	"io"

	"golang.org/x/crypto/ssh"
)

// sshSessionWrapper adapts *ssh.Session to the internal session interface so
// callers can remain oblivious to the concrete SSH transport.
type sshSessionWrapper struct {
	s *ssh.Session
}

func (w sshSessionWrapper) StdoutPipe() (io.Reader, error) { return w.s.StdoutPipe() }

func (w sshSessionWrapper) Start(cmd string) error { return w.s.Start(cmd) }

// Wait blocks until the remote side closes the channel. An *ssh.ExitError is
// turned into its status; anything else (including a missing exit status) is
// a transport error.
func (w sshSessionWrapper) Wait() (int, error) {
	err := w.s.Wait()
	if err == nil {
		return 0, nil
	}
	var ee *ssh.ExitError
	if errors.As(err, &ee) {
		return ee.ExitStatus(), nil
	}
	return -1, err
}

// Close closes the channel. Closing an already finished session reports
// io.EOF, which is not interesting to callers.
func (w sshSessionWrapper) Close() error {
	if err := w.s.Close(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
