// Package sshserv is a small in-process SSH server for tests and local
// development. Exec requests are answered by a Responder and the sftp
// subsystem is served against the local filesystem.
package sshserv

import (
	"io"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/gliderlabs/ssh"
	"github.com/pkg/sftp"
	gossh "golang.org/x/crypto/ssh"
)

// Responder maps one exec'd command to its stdout and exit status.
type Responder func(command string) (stdout string, status int)

// Options configures Start. A nil AuthorizedKey lets any client in without
// authentication.
type Options struct {
	Responder     Responder
	AuthorizedKey gossh.PublicKey
}

// Server is a running test server.
type Server struct {
	srv *ssh.Server
	ln  net.Listener

	mu       sync.Mutex
	commands []string
}

// Start listens on listenAddr (e.g. 127.0.0.1:0) and serves until Close.
func Start(listenAddr string, opts Options) (*Server, error) {
	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, err
	}
	respond := opts.Responder
	if respond == nil {
		respond = DefaultResponder
	}

	s := &Server{ln: ln}
	s.srv = &ssh.Server{
		Handler: func(sess ssh.Session) {
			command := sess.RawCommand()
			s.record(command)
			out, status := respond(command)
			_, _ = io.WriteString(sess, out)
			_ = sess.Exit(status)
		},
		SubsystemHandlers: map[string]ssh.SubsystemHandler{
			"sftp": serveSFTP,
		},
	}
	if opts.AuthorizedKey != nil {
		want := opts.AuthorizedKey
		s.srv.PublicKeyHandler = func(_ ssh.Context, key ssh.PublicKey) bool {
			return ssh.KeysEqual(key, want)
		}
	}
	go func() { _ = s.srv.Serve(ln) }()
	return s, nil
}

func serveSFTP(sess ssh.Session) {
	server, err := sftp.NewServer(sess)
	if err != nil {
		return
	}
	_ = server.Serve()
	_ = server.Close()
}

func (s *Server) record(command string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, command)
}

// Commands returns the exec'd commands in arrival order.
func (s *Server) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

// Addr is the host:port the server listens on.
func (s *Server) Addr() string { return s.ln.Addr().String() }

// Port is the listening TCP port.
func (s *Server) Port() int { return s.ln.Addr().(*net.TCPAddr).Port }

// Close stops accepting connections and drops open ones.
func (s *Server) Close() error { return s.srv.Close() }

// DefaultResponder understands a tiny shell subset: true, false, exit N and
// echo. Everything else prints "ok" and succeeds.
func DefaultResponder(command string) (string, int) {
	command = strings.TrimSpace(command)
	switch {
	case command == "true":
		return "", 0
	case command == "false":
		return "", 1
	case strings.HasPrefix(command, "exit "):
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(command, "exit ")))
		if err != nil {
			return "", 2
		}
		return "", n
	case command == "echo":
		return "\n", 0
	case strings.HasPrefix(command, "echo "):
		arg := strings.TrimSpace(strings.TrimPrefix(command, "echo "))
		return strings.Trim(arg, `'"`) + "\n", 0
	}
	return "ok\n", 0
}
