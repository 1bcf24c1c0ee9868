package cmd

import "io"

// session is one exec channel on a host connection. Wait reports the remote
// exit status; a non-zero status is not an error.
type session interface {
	StdoutPipe() (io.Reader, error)
	Start(cmd string) error
	Wait() (int, error)
	Close() error
}
