package cmd

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"
)

// loadSigner reads h's private key. ssh_passphrase is only consulted when the
// key turns out to be encrypted, so a stale passphrase next to a plain key is
// harmless.
func loadSigner(h host) (ssh.Signer, error) {
	b, err := os.ReadFile(h.PrivkeyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	s, err := ssh.ParsePrivateKey(b)
	var missing *ssh.PassphraseMissingError
	switch {
	case err == nil:
		return s, nil
	case !errors.As(err, &missing):
		return nil, fmt.Errorf("parse private key %s: %w", h.PrivkeyPath, err)
	case h.SSHPassphrase == "":
		return nil, fmt.Errorf("private key %s is encrypted; set ssh_passphrase in hosts.yml", h.PrivkeyPath)
	}
	s, err = ssh.ParsePrivateKeyWithPassphrase(b, []byte(h.SSHPassphrase))
	if err != nil {
		return nil, fmt.Errorf("decrypt private key %s: %w", h.PrivkeyPath, err)
	}
	return s, nil
}
