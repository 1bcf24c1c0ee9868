package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// yamlReport is the top-level structure written by --report: one entry per
// host with the scrolls and tasks that were attempted there.
type yamlReport struct {
	Project   string     `yaml:"project"`
	Generated string     `yaml:"generated"`
	Success   bool       `yaml:"success"`
	Hosts     []yamlHost `yaml:"hosts"`
}

type yamlHost struct {
	Host     string       `yaml:"host"`
	User     string       `yaml:"user"`
	State    string       `yaml:"state"`
	FailedIn string       `yaml:"failed_in,omitempty"`
	Error    string       `yaml:"error,omitempty"`
	Pcap     string       `yaml:"pcap,omitempty"`
	Packets  int          `yaml:"packets,omitempty"`
	Scrolls  []yamlScroll `yaml:"scrolls,omitempty"`
}

type yamlScroll struct {
	Name   string           `yaml:"name"`
	Status string           `yaml:"status"`
	Tasks  []yamlTaskResult `yaml:"tasks"`
}

// yamlTaskResult records the outcome of a single task execution.
type yamlTaskResult struct {
	Name       string `yaml:"name"`
	Kind       string `yaml:"kind"`
	ExitStatus int    `yaml:"exit_status"`
	Error      string `yaml:"error,omitempty"`
	Duration   string `yaml:"duration"`
}

// newYAMLReport converts run results into the report model.
func newYAMLReport(projectPath string, results []hostResult) *yamlReport {
	r := &yamlReport{
		Project:   projectPath,
		Generated: time.Now().Format(time.RFC3339),
		Success:   allDone(results),
		Hosts:     make([]yamlHost, 0, len(results)),
	}
	for _, hr := range results {
		yh := yamlHost{
			Host:    hr.Host.Host,
			User:    hr.Host.user(),
			State:   hr.State.String(),
			Pcap:    hr.PcapPath,
			Packets: hr.Packets,
		}
		if hr.State == stateFatal {
			yh.FailedIn = hr.FailedIn.String()
		}
		if hr.Err != nil {
			yh.Error = hr.Err.Error()
		}
		for _, sr := range hr.Scrolls {
			ys := yamlScroll{Name: sr.Name, Status: "ok", Tasks: []yamlTaskResult{}}
			if sr.Failed {
				ys.Status = "failed"
			}
			for _, tr := range sr.Tasks {
				yt := yamlTaskResult{
					Name:       tr.Name,
					Kind:       tr.Kind,
					ExitStatus: tr.ExitStatus,
					Duration:   tr.Duration.Round(time.Millisecond).String(),
				}
				if tr.Err != nil {
					yt.Error = tr.Err.Error()
				}
				ys.Tasks = append(ys.Tasks, yt)
			}
			yh.Scrolls = append(yh.Scrolls, ys)
		}
		r.Hosts = append(r.Hosts, yh)
	}
	return r
}

// writeYAMLReport serializes the report with two-space indentation.
func writeYAMLReport(w io.Writer, r *yamlReport) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		_ = enc.Close()
		return err
	}
	_ = enc.Close()
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(buf.Bytes()); err != nil {
		return err
	}
	return bw.Flush()
}

// saveYAMLReport writes the report to path, creating parent directories.
func saveYAMLReport(path string, r *yamlReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := writeYAMLReport(f, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}
