package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// writePlan prints, per host, the scrolls and tasks in the order they would
// run, without contacting anything.
func writePlan(w io.Writer, p *project) error {
	bw := bufio.NewWriter(w)
	for _, h := range p.Inventory.Hosts {
		_, _ = fmt.Fprintf(bw, "Host %s (%s@%s)\n", h.Host, h.user(), h.target())
		for i := len(p.Scrolls) - 1; i >= 0; i-- {
			s := p.Scrolls[i]
			_, _ = fmt.Fprintf(bw, "  Scroll %s\n", s.Name)
			for j := range s.Tasks {
				t := &s.Tasks[j]
				_, _ = fmt.Fprintf(bw, "    [%d/%d] %s (%s): %s\n", j+1, len(s.Tasks), t.Name, t.TaskExec.kind(), describeTask(t))
			}
		}
	}
	return bw.Flush()
}

func describeTask(t *task) string {
	e := t.TaskExec
	switch {
	case e.Bash != nil:
		return e.Bash.line()
	case e.BashScript != nil:
		return strings.Join(e.BashScript.Script, "; ")
	case e.FileSync != nil:
		return e.FileSync.sourcePath(t.Dir) + " -> " + e.FileSync.Destination
	}
	return ""
}
