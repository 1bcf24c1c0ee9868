package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "argus",
	Short: "Apply scrolls of tasks to a fleet of hosts over SSH",
	Long: "Reads hosts.yml and the scrolls it names from a project directory, connects to every host over SSH " +
		"in parallel and runs the scrolls' tasks there, optionally capturing each host's traffic to a pcap file.",
	Version:      Version,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgProjectPath == "" {
			return errors.New("--project-path is required (directory containing hosts.yml)")
		}

		logger := newLogger(cmd.ErrOrStderr(), cfgLog)
		ctx := logger.WithContext(cmd.Context())

		p, err := loadProject(cfgProjectPath)
		if err != nil {
			return fmt.Errorf("failed to load project: %w", err)
		}

		if cfgPcap {
			if err := checkCaptureTargets(p.Inventory.Hosts); err != nil {
				return fmt.Errorf("failed to load project: %w", err)
			}
		}

		if cfgNoop {
			return writePlan(cmd.OutOrStdout(), p)
		}

		if key := p.Inventory.PubkeyPath; key != "" {
			if err := sshAddFunc(ctx, key); err != nil {
				logger.Warn().Err(err).Msg("could not add key to ssh agent")
			}
		}

		if cfgPcap {
			if err := os.MkdirAll(cfgPcapDir, 0o755); err != nil {
				return fmt.Errorf("failed to create pcap dir: %w", err)
			}
		}

		opts := runOptions{
			Dial: dialOptions{
				ConnTimeout:    cfgConnTimeout,
				KnownHostsPath: cfgKnownHosts,
				StrictHostKey:  cfgStrictHost,
			},
			CmdTimeout: cfgTimeout,
			Pcap:       cfgPcap,
			PcapDir:    cfgPcapDir,
			Forks:      cfgForks,
		}
		results := runAll(ctx, p.Inventory.Hosts, p.Scrolls, opts)

		if cfgReportPath != "" {
			if err := saveYAMLReport(cfgReportPath, newYAMLReport(p.Path, results)); err != nil {
				return fmt.Errorf("failed to write YAML report: %w", err)
			}
			logger.Info().Str("path", cfgReportPath).Msg("report written")
		}
		if cfgMetricsPath != "" {
			m := newRunMetrics()
			m.record(results)
			if err := m.writeTextfile(cfgMetricsPath); err != nil {
				return fmt.Errorf("failed to write metrics: %w", err)
			}
		}

		failed := 0
		for _, r := range results {
			if r.State != stateDone {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%w: %d of %d", errHostsFailed, failed, len(results))
		}
		logger.Info().Int("hosts", len(results)).Msg("all hosts done")
		return nil
	},
}
