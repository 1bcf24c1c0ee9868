package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const inventoryFile = "hosts.yml"

// loadInventory reads and validates <projectPath>/hosts.yml.
func loadInventory(projectPath string) (*inventory, error) {
	path := filepath.Join(projectPath, inventoryFile)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	inv := &inventory{}
	if err := yamlUnmarshal(b, inv); err != nil {
		return nil, formatYAMLError(path, err)
	}
	if len(inv.Hosts) == 0 {
		return nil, errors.New("hosts.yml: at least one host is required")
	}
	for i, h := range inv.Hosts {
		if strings.TrimSpace(h.Host) == "" {
			return nil, fmt.Errorf("hosts.yml: hosts[%d].host is required", i)
		}
		if h.Port < 0 || h.Port > 65535 {
			return nil, fmt.Errorf("hosts.yml: hosts[%d].port %d out of range", i, h.Port)
		}
	}
	for i, s := range inv.Scrolls {
		if strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("hosts.yml: scrolls[%d] is empty", i)
		}
	}
	return inv, nil
}

// checkCaptureTargets rejects inventories where two hosts share an address.
// Savefiles are named after the address, so such hosts would write the same
// <address>.pcap concurrently.
func checkCaptureTargets(hosts []host) error {
	seen := make(map[string]int, len(hosts))
	for i, h := range hosts {
		if j, dup := seen[h.Host]; dup {
			return fmt.Errorf("hosts.yml: hosts[%d] and hosts[%d] share address %s; --pcap needs one entry per address", j, i, h.Host)
		}
		seen[h.Host] = i
	}
	return nil
}
