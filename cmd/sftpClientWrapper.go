package cmd

import (
	"io"

	"github.com/pkg/sftp"
)

// sftpClientWrapper adapts *sftp.Client to sftpClient.
type sftpClientWrapper struct {
	c *sftp.Client
}

// Create opens path on the remote for writing, truncating any existing file.
func (w sftpClientWrapper) Create(path string) (io.WriteCloser, error) {
	return w.c.Create(path)
}

func (w sftpClientWrapper) Close() error { return w.c.Close() }
