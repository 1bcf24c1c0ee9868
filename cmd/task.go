package cmd

import "time"

// Task kinds as they appear under task_exec in main.yml.
const (
	kindBash       = "Bash"
	kindBashScript = "BashScript"
	kindFileSync   = "FileSync"
)

// task is one unit of remote work. Dir is the owning scroll's directory and
// is filled in by loadScroll; FileSync resolves its source against it.
type task struct {
	Name     string   `yaml:"name"`
	TaskExec taskExec `yaml:"task_exec"`
	Dir      string   `yaml:"-"`
}

// taskExec is a closed sum: exactly one field is set after validation.
type taskExec struct {
	Bash       *bashTask       `yaml:"Bash,omitempty"`
	BashScript *bashScriptTask `yaml:"BashScript,omitempty"`
	FileSync   *fileSyncTask   `yaml:"FileSync,omitempty"`
}

type bashTask struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
	// Optional per-task timeout like "30s"; overrides --cmd-timeout.
	Timeout string `yaml:"timeout,omitempty"`
}

type bashScriptTask struct {
	Script  []string `yaml:"script"`
	Timeout string   `yaml:"timeout,omitempty"`
}

type fileSyncTask struct {
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`
}

// kind names the populated variant, or "" if none is set.
func (e taskExec) kind() string {
	switch {
	case e.Bash != nil:
		return kindBash
	case e.BashScript != nil:
		return kindBashScript
	case e.FileSync != nil:
		return kindFileSync
	}
	return ""
}

// variants counts populated variants; anything but 1 is a malformed task.
func (e taskExec) variants() int {
	n := 0
	if e.Bash != nil {
		n++
	}
	if e.BashScript != nil {
		n++
	}
	if e.FileSync != nil {
		n++
	}
	return n
}

// perTaskTimeout parses raw as a duration, falling back to def when raw is
// empty. Loaded scrolls never carry a malformed value; validateTask rejects
// those.
func perTaskTimeout(raw string, def time.Duration) time.Duration {
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}
