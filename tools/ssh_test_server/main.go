package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	srv "github.com/lukasmetzner/argus/tools/sshserv"
)

// A local SSH+SFTP target for trying out projects: point a host at
// 127.0.0.1 with port 20222.
func main() {
	s, err := srv.Start("127.0.0.1:20222", srv.Options{})
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "failed to start test ssh server:", err)
		os.Exit(1)
	}
	_, _ = fmt.Fprintf(os.Stderr, "test ssh server listening on %s\n", s.Addr())
	defer func() { _ = s.Close() }()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
}
