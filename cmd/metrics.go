package cmd

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// runMetrics holds the counters exported through --metrics-file. Each run
// gets its own registry so the textfile only carries argus series.
type runMetrics struct {
	registry     *prometheus.Registry
	tasks        *prometheus.CounterVec
	taskDuration *prometheus.HistogramVec
	hosts        *prometheus.CounterVec
	packets      *prometheus.CounterVec
}

func newRunMetrics() *runMetrics {
	m := &runMetrics{
		registry: prometheus.NewRegistry(),
		tasks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "argus",
				Name:      "tasks_total",
				Help:      "Tasks attempted, by outcome.",
			},
			[]string{"host", "scroll", "kind", "result"},
		),
		taskDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "argus",
				Name:      "task_duration_seconds",
				Help:      "Task duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"host", "kind"},
		),
		hosts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "argus",
				Name:      "hosts_total",
				Help:      "Hosts by final state.",
			},
			[]string{"state", "failed_in"},
		),
		packets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "argus",
				Name:      "captured_packets_total",
				Help:      "Packets written to the host savefile.",
			},
			[]string{"host"},
		),
	}
	m.registry.MustRegister(m.tasks, m.taskDuration, m.hosts, m.packets)
	return m
}

// taskOutcome labels a task result: ok, exit_<n> or error.
func taskOutcome(tr taskResult) string {
	switch {
	case tr.Err != nil:
		return "error"
	case tr.ExitStatus > 0:
		return "exit_" + strconv.Itoa(tr.ExitStatus)
	}
	return "ok"
}

func (m *runMetrics) record(results []hostResult) {
	for _, hr := range results {
		failedIn := ""
		if hr.State == stateFatal {
			failedIn = hr.FailedIn.String()
		}
		m.hosts.WithLabelValues(hr.State.String(), failedIn).Inc()
		if hr.PcapPath != "" {
			m.packets.WithLabelValues(hr.Host.Host).Add(float64(hr.Packets))
		}
		for _, sr := range hr.Scrolls {
			for _, tr := range sr.Tasks {
				m.tasks.WithLabelValues(hr.Host.Host, sr.Name, tr.Kind, taskOutcome(tr)).Inc()
				m.taskDuration.WithLabelValues(hr.Host.Host, tr.Kind).Observe(tr.Duration.Seconds())
			}
		}
	}
}

// writeTextfile dumps the registry in the node_exporter textfile format.
func (m *runMetrics) writeTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
