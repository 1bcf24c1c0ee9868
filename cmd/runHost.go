package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// runOptions are the per-run settings every host worker shares.
type runOptions struct {
	Dial       dialOptions
	CmdTimeout time.Duration
	Pcap       bool
	PcapDir    string
	Forks      int
}

type hostResult struct {
	Host  host
	State hostState
	// FailedIn is the phase a FATAL host failed in.
	FailedIn hostState
	Err      error
	Scrolls  []scrollResult
	// PcapPath and Packets are set when a capture was armed for the host.
	PcapPath string
	Packets  int
}

// runHost opens one SSH connection to h and applies scrolls over it, last
// declared scroll first. Connection failures are fatal for the host; task
// failures only end the scroll they occur in.
func runHost(ctx context.Context, h host, scrolls []*scroll, opts runOptions) hostResult {
	logger := zerolog.Ctx(ctx)
	res := hostResult{Host: h, State: stateDialing}

	logger.Info().Msgf("=========== %s ===========", h.Host)
	logger.Info().Msgf("Executing scrolls on host %s", h.Host)

	client, err := dialHostFunc(ctx, h, opts.Dial)
	if err != nil {
		res.State = stateFatal
		res.FailedIn = stateDialing
		var he *hostError
		if errors.As(err, &he) {
			res.FailedIn = he.State
		}
		res.Err = err
		logger.Error().Err(err).Str("phase", res.FailedIn.String()).Msg("host failed")
		return res
	}
	defer func() { _ = client.Close() }()
	logger.Info().Str("user", h.user()).Msg("Authenticated")

	res.State = stateRunning
	for i := len(scrolls) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			res.State = stateFatal
			res.FailedIn = stateRunning
			res.Err = fmt.Errorf("interrupted before scroll %s: %w", scrolls[i].Name, err)
			logger.Error().Err(res.Err).Msg("host failed")
			return res
		}
		res.Scrolls = append(res.Scrolls, runScroll(ctx, client, scrolls[i], opts.CmdTimeout))
	}
	res.State = stateDone
	return res
}
