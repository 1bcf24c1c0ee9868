package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// loadScroll reads <dir>/main.yml, validates every task and tags each one
// with dir so FileSync can resolve relative sources.
func loadScroll(dir string) (*scroll, error) {
	path := filepath.Join(dir, scrollFile)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scroll: %w", err)
	}
	var tasks []task
	if err := yamlUnmarshal(b, &tasks); err != nil {
		return nil, formatYAMLError(path, err)
	}
	for i := range tasks {
		if err := validateTask(tasks[i]); err != nil {
			return nil, fmt.Errorf("%s: tasks[%d]: %w", path, i, err)
		}
		tasks[i].Dir = dir
	}
	return &scroll{
		Name:  filepath.Base(filepath.Clean(dir)),
		Dir:   dir,
		Tasks: tasks,
	}, nil
}

func validateTask(t task) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("name is required")
	}
	switch t.TaskExec.variants() {
	case 0:
		return fmt.Errorf("task %q: task_exec must name one of %s, %s, %s", t.Name, kindBash, kindBashScript, kindFileSync)
	case 1:
	default:
		return fmt.Errorf("task %q: task_exec must hold exactly one variant", t.Name)
	}
	e := t.TaskExec
	switch {
	case e.Bash != nil && strings.TrimSpace(e.Bash.Command) == "":
		return fmt.Errorf("task %q: Bash.command is required", t.Name)
	case e.BashScript != nil && len(e.BashScript.Script) == 0:
		return fmt.Errorf("task %q: BashScript.script is empty", t.Name)
	case e.FileSync != nil && (e.FileSync.Source == "" || e.FileSync.Destination == ""):
		return fmt.Errorf("task %q: FileSync needs source and destination", t.Name)
	case e.Bash != nil:
		return validateTimeout(t.Name, e.Bash.Timeout)
	case e.BashScript != nil:
		return validateTimeout(t.Name, e.BashScript.Timeout)
	}
	return nil
}

// validateTimeout accepts an empty value or a non-negative Go duration.
func validateTimeout(name, raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("task %q: invalid timeout %q: %w", name, raw, err)
	}
	if d < 0 {
		return fmt.Errorf("task %q: invalid timeout %q: must not be negative", name, raw)
	}
	return nil
}
