package cmd

import (
	"fmt"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// sshClientWrapper adapts *ssh.Client to hostClient.
type sshClientWrapper struct {
	c *ssh.Client
}

// NewSession opens a new channel on the underlying *ssh.Client.
func (w sshClientWrapper) NewSession() (session, error) {
	if w.c == nil {
		return nil, fmt.Errorf("nil ssh client")
	}
	s, err := w.c.NewSession()
	if err != nil {
		return nil, err
	}
	return sshSessionWrapper{s}, nil
}

// NewSFTP starts the sftp subsystem on a fresh channel of the same
// connection.
func (w sshClientWrapper) NewSFTP() (sftpClient, error) {
	if w.c == nil {
		return nil, fmt.Errorf("nil ssh client")
	}
	c, err := sftp.NewClient(w.c)
	if err != nil {
		return nil, err
	}
	return sftpClientWrapper{c}, nil
}

func (w sshClientWrapper) Close() error {
	if w.c == nil {
		return nil
	}
	return w.c.Close()
}
