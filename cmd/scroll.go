package cmd

// scroll is a named, ordered bundle of tasks loaded from <dir>/main.yml.
// Scrolls are immutable after loading and shared read-only by all hosts.
type scroll struct {
	Name  string
	Dir   string
	Tasks []task
}

const scrollFile = "main.yml"
