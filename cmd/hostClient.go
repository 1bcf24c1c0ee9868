package cmd

import "io"

// hostClient is the authenticated connection to a single host. Every task of
// every scroll on that host goes through the same hostClient.
type hostClient interface {
	NewSession() (session, error)
	NewSFTP() (sftpClient, error)
	Close() error
}

// sftpClient is the slice of an SFTP client that FileSync needs.
type sftpClient interface {
	Create(path string) (io.WriteCloser, error)
	Close() error
}
