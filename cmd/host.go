package cmd

import (
	"net"
	"strconv"
	"strings"
)

const (
	defaultSSHUser = "root"
	defaultSSHPort = 22
)

// host is one inventory entry. The address doubles as the pcap filter key, so
// it is kept exactly as written in hosts.yml.
type host struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port,omitempty"`
	User          string `yaml:"user,omitempty"`
	PubkeyPath    string `yaml:"pubkey_path,omitempty"`
	PrivkeyPath   string `yaml:"privkey_path,omitempty"`
	SSHPassphrase string `yaml:"ssh_passphrase,omitempty"`
}

// user returns the login name, falling back to root.
func (h host) user() string {
	if u := strings.TrimSpace(h.User); u != "" {
		return u
	}
	return defaultSSHUser
}

// target returns the host:port pair to dial.
func (h host) target() string {
	port := h.Port
	if port <= 0 {
		port = defaultSSHPort
	}
	return net.JoinHostPort(h.Host, strconv.Itoa(port))
}

// usesKeyFile reports whether the host authenticates with an explicit private
// key rather than the SSH agent.
func (h host) usesKeyFile() bool {
	return strings.TrimSpace(h.PrivkeyPath) != ""
}
