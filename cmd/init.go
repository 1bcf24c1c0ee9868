package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// init configures the root command's persistent flags, binds them to ARGUS_*
// environment variables via Viper, and registers subcommands.
func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgProjectPath, "project-path", "p", "", "Project root containing hosts.yml and scrolls/")
	rootCmd.PersistentFlags().BoolVar(&cfgPcap, "pcap", false, "Capture each host's traffic to <host>.pcap")
	rootCmd.PersistentFlags().StringVar(&cfgPcapDir, "pcap-dir", ".", "Directory for pcap files")
	rootCmd.PersistentFlags().IntVar(&cfgForks, "forks", 0, "Maximum hosts in flight (0 runs every host at once)")
	rootCmd.PersistentFlags().DurationVar(&cfgTimeout, "cmd-timeout", 0, "Per-command timeout (e.g., 30s). 0 disables")
	rootCmd.PersistentFlags().DurationVar(&cfgConnTimeout, "conn-timeout", 15*time.Second, "Connection and handshake timeout")
	rootCmd.PersistentFlags().StringVar(&cfgKnownHosts, "known-hosts", filepath.Join(os.Getenv("HOME"), ".ssh", "known_hosts"), "Path to known_hosts file")
	rootCmd.PersistentFlags().BoolVar(&cfgStrictHost, "strict-host-key", false, "Verify host keys against --known-hosts")
	rootCmd.PersistentFlags().StringVar(&cfgReportPath, "report", "", "Write a YAML run report to this path")
	rootCmd.PersistentFlags().StringVar(&cfgMetricsPath, "metrics-file", "", "Write Prometheus textfile metrics to this path")
	rootCmd.PersistentFlags().BoolVar(&cfgNoop, "noop", false, "Print the execution plan without connecting to any host")

	for _, name := range []string{
		"project-path", "pcap", "pcap-dir", "forks", "cmd-timeout", "conn-timeout",
		"known-hosts", "strict-host-key", "report", "metrics-file", "noop",
	} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	viper.SetEnvPrefix("ARGUS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	// Log filter directives come from plain LOG, not ARGUS_LOG.
	_ = viper.BindEnv("log", "LOG")

	cobra.OnInitialize(applyEnvOverrides)

	rootCmd.AddCommand(verifyCmd)
}

// applyEnvOverrides pulls ARGUS_* values into the cfg variables for flags the
// user did not set on the command line.
func applyEnvOverrides() {
	if v := viper.GetString("project-path"); v != "" {
		cfgProjectPath = v
	}
	if v := viper.GetString("pcap-dir"); v != "" {
		cfgPcapDir = v
	}
	if v := viper.GetString("known-hosts"); v != "" {
		cfgKnownHosts = v
	}
	if v := viper.GetString("report"); v != "" {
		cfgReportPath = v
	}
	if v := viper.GetString("metrics-file"); v != "" {
		cfgMetricsPath = v
	}
	if v := viper.GetString("cmd-timeout"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfgTimeout = d
		}
	}
	if v := viper.GetString("conn-timeout"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfgConnTimeout = d
		}
	}
	if viper.IsSet("forks") {
		cfgForks = viper.GetInt("forks")
	}
	if viper.IsSet("pcap") {
		cfgPcap = viper.GetBool("pcap")
	}
	if viper.IsSet("strict-host-key") {
		cfgStrictHost = viper.GetBool("strict-host-key")
	}
	if viper.IsSet("noop") {
		cfgNoop = viper.GetBool("noop")
	}
	cfgLog = viper.GetString("log")
}
