package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Validate hosts.yml and every scroll it references",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgProjectPath == "" {
			return errors.New("--project-path is required (directory containing hosts.yml)")
		}
		p, err := loadProject(cfgProjectPath)
		if err != nil {
			return fmt.Errorf("invalid project: %w", err)
		}
		tasks := 0
		for _, s := range p.Scrolls {
			tasks += len(s.Tasks)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Project OK: %d hosts, %d scrolls, %d tasks\n",
			len(p.Inventory.Hosts), len(p.Scrolls), tasks)
		return nil
	},
}
