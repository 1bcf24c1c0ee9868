package cmd

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type taskResult struct {
	Name       string
	Kind       string
	ExitStatus int
	Err        error
	Duration   time.Duration
}

type scrollResult struct {
	Name   string
	Failed bool
	Tasks  []taskResult
}

// runScroll runs the tasks of s in order over client. The first task that
// errors or exits non-zero ends the scroll; the caller moves on to the next
// scroll either way.
func runScroll(ctx context.Context, client hostClient, s *scroll, cmdTimeout time.Duration) scrollResult {
	logger := zerolog.Ctx(ctx)
	res := scrollResult{Name: s.Name}
	for i := range s.Tasks {
		t := &s.Tasks[i]
		start := time.Now()
		status, err := t.exec(ctx, client, cmdTimeout)
		res.Tasks = append(res.Tasks, taskResult{
			Name:       t.Name,
			Kind:       t.TaskExec.kind(),
			ExitStatus: status,
			Err:        err,
			Duration:   time.Since(start),
		})
		if err != nil {
			logger.Error().Err(err).Str("scroll", s.Name).Str("task", t.Name).Msg("error occurred in task")
			res.Failed = true
			break
		}
		if status > 0 {
			logger.Error().Msgf("Task in Scroll %s exited with error code %d", s.Name, status)
			res.Failed = true
			break
		}
	}
	return res
}
