package cmd

import (
	"fmt"
	"path/filepath"
)

// project is everything read from disk before any host is contacted.
// Scrolls are kept in declared (hosts.yml) order.
type project struct {
	Path      string
	Inventory *inventory
	Scrolls   []*scroll
}

// loadProject loads hosts.yml and every scroll it names. Any error here is
// fatal for the whole run.
func loadProject(projectPath string) (*project, error) {
	inv, err := loadInventory(projectPath)
	if err != nil {
		return nil, err
	}
	scrolls := make([]*scroll, 0, len(inv.Scrolls))
	for _, name := range inv.Scrolls {
		s, err := loadScroll(filepath.Join(projectPath, "scrolls", name))
		if err != nil {
			return nil, fmt.Errorf("scroll %s: %w", name, err)
		}
		scrolls = append(scrolls, s)
	}
	return &project{Path: projectPath, Inventory: inv, Scrolls: scrolls}, nil
}
