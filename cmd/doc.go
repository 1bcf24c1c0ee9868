// Package cmd implements the argus command-line interface.
//
// argus reads a project directory (hosts.yml plus scrolls/<name>/main.yml),
// opens one SSH connection per host and applies the scrolls there in
// parallel across hosts and in order within a host.
//
// Start with rootCmd.go for the cobra wiring, runAll.go and runHost.go for
// the per-host lifecycle, task.exec.go for task dispatch, and capture.go for
// the optional packet capture sidecar.
package cmd
