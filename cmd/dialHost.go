package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// dialOptions carries the connection settings shared by every host.
type dialOptions struct {
	ConnTimeout    time.Duration
	KnownHostsPath string
	StrictHostKey  bool
}

// dialHost connects and authenticates to h. Every failure is a *hostError
// naming the phase (dial, handshake or auth) it happened in.
func dialHost(ctx context.Context, h host, opts dialOptions) (hostClient, error) {
	fail := func(state hostState, err error) (hostClient, error) {
		return nil, &hostError{Host: h.Host, State: state, Err: err}
	}

	auths, closeAgent, err := authMethods(h)
	if err != nil {
		return fail(stateAuthenticating, err)
	}
	defer closeAgent()

	verify, err := hostKeyCallback(opts)
	if err != nil {
		return fail(stateHandshaking, err)
	}
	// The host key is checked once key exchange is done; anything failing
	// after that point is an authentication failure.
	var kexDone atomic.Bool
	cfg := &ssh.ClientConfig{
		User: h.user(),
		Auth: auths,
		HostKeyCallback: func(hostname string, remote net.Addr, key ssh.PublicKey) error {
			if err := verify(hostname, remote, key); err != nil {
				return err
			}
			kexDone.Store(true)
			return nil
		},
		Timeout: opts.ConnTimeout,
	}

	target := h.target()
	d := net.Dialer{Timeout: opts.ConnTimeout}
	conn, err := d.DialContext(ctx, "tcp", target)
	if err != nil {
		return fail(stateDialing, err)
	}
	if opts.ConnTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(opts.ConnTimeout))
	}
	// NewClientConn has no context; closing the conn aborts a stalled handshake.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	c, chans, reqs, err := ssh.NewClientConn(conn, target, cfg)
	if !stop() {
		if err == nil {
			_ = c.Close()
		}
		err = ctx.Err()
	}
	if err != nil {
		_ = conn.Close()
		if kexDone.Load() {
			return fail(stateAuthenticating, err)
		}
		return fail(stateHandshaking, err)
	}
	_ = conn.SetDeadline(time.Time{})
	return sshClientWrapper{ssh.NewClient(c, chans, reqs)}, nil
}

// hostKeyCallback verifies against known_hosts in strict mode and accepts any
// key otherwise.
func hostKeyCallback(opts dialOptions) (ssh.HostKeyCallback, error) {
	if !opts.StrictHostKey {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	if _, err := os.Stat(opts.KnownHostsPath); err != nil {
		return nil, fmt.Errorf("known_hosts file not found at %s and strict-host-key is enabled", opts.KnownHostsPath)
	}
	cb, err := knownhosts.New(opts.KnownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("known_hosts: %w", err)
	}
	return cb, nil
}
