package cmd

import (
	"errors"
	"os"
	"time"
)

// Version is the CLI version string injected at build time via -ldflags.
var Version = "0.1.0"

// errHostsFailed is returned by the root command when at least one host ended
// in the FATAL state. Other hosts still ran to completion.
var errHostsFailed = errors.New("one or more hosts failed")

var (
	// Global configuration populated by flags and/or ARGUS_* environment
	// variables. Declared here so they are visible across subcommands.
	cfgProjectPath string
	cfgPcap        bool
	cfgPcapDir     string
	cfgForks       int
	cfgTimeout     time.Duration
	cfgConnTimeout time.Duration
	cfgKnownHosts  string
	cfgStrictHost  bool
	cfgReportPath  string
	cfgMetricsPath string
	cfgNoop        bool
	cfgLog         string
)

// Allow tests to stub dialing, packet capture and ssh-add.
var (
	dialHostFunc    = dialHost
	openCaptureFunc = openCapture
	sshAddFunc      = sshAdd
)

// exitFunc lets tests capture exit codes without terminating the process.
var exitFunc = os.Exit
