package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlUnmarshal decodes b strictly: unknown keys (including unknown task
// variants) are rejected. An empty document leaves out untouched.
func yamlUnmarshal(b []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("yaml unmarshal: %w", err)
	}
	return nil
}

// formatYAMLError prefixes decode errors with the offending file.
func formatYAMLError(path string, err error) error {
	if strings.Contains(err.Error(), "line") {
		return fmt.Errorf("syntax error in %s: %w", path, err)
	}
	return fmt.Errorf("failed to parse %s: %w", path, err)
}
