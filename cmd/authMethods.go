package cmd

import (
	"bytes"
	"fmt"
	"net"
	"os"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// authMethods picks the auth policy for h. Hosts with privkey_path use that
// key (and, if given, check it against pubkey_path); every other host uses
// the running SSH agent. The returned closer releases the agent socket.
func authMethods(h host) ([]ssh.AuthMethod, func(), error) {
	noop := func() {}
	if h.usesKeyFile() {
		signer, err := loadSigner(h)
		if err != nil {
			return nil, noop, fmt.Errorf("load key: %w", err)
		}
		if h.PubkeyPath != "" {
			if err := matchPublicKey(h.PubkeyPath, signer.PublicKey()); err != nil {
				return nil, noop, err
			}
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, noop, nil
	}

	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil, noop, nil
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, noop, fmt.Errorf("ssh agent: %w", err)
	}
	ag := agent.NewClient(conn)
	return []ssh.AuthMethod{ssh.PublicKeysCallback(ag.Signers)}, func() { _ = conn.Close() }, nil
}

// matchPublicKey fails when the authorized_keys style file at path does not
// hold the public half of the configured private key.
func matchPublicKey(path string, want ssh.PublicKey) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read public key: %w", err)
	}
	got, _, _, _, err := ssh.ParseAuthorizedKey(b)
	if err != nil {
		return fmt.Errorf("parse public key %s: %w", path, err)
	}
	if !bytes.Equal(got.Marshal(), want.Marshal()) {
		return fmt.Errorf("public key %s does not match private key", path)
	}
	return nil
}
