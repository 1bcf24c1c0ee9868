package cmd

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// runAll runs every host concurrently, each with its own logger and
// connection, and returns results in inventory order. A failing host never
// cancels the others. opts.Forks > 0 caps the number of hosts in flight.
func runAll(ctx context.Context, hosts []host, scrolls []*scroll, opts runOptions) []hostResult {
	var (
		wg      sync.WaitGroup
		sem     chan struct{}
		results = make([]hostResult, len(hosts))
	)
	if opts.Forks > 0 {
		sem = make(chan struct{}, opts.Forks)
	}
	base := zerolog.Ctx(ctx)

	for i, h := range hosts {
		wg.Add(1)
		go func(i int, h host) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			hctx := base.With().Str("host", h.Host).Logger().WithContext(ctx)
			if opts.Pcap {
				results[i] = runHostWithCapture(hctx, h, scrolls, opts)
				return
			}
			results[i] = runHost(hctx, h, scrolls, opts)
		}(i, h)
	}

	wg.Wait()
	return results
}

// runHostWithCapture arms the capture sidecar before the executor so the
// handshake is recorded, and stops it once the executor has finished. A
// capture that cannot be armed is logged and the host runs without it.
func runHostWithCapture(ctx context.Context, h host, scrolls []*scroll, opts runOptions) hostResult {
	logger := zerolog.Ctx(ctx)
	rec, err := openCaptureFunc(h.Host, opts.PcapDir)
	if err != nil {
		logger.Error().Err(err).Msg("packet capture unavailable")
		return runHost(ctx, h, scrolls, opts)
	}

	type captured struct {
		packets int
		err     error
	}
	stop := make(chan struct{})
	done := make(chan captured, 1)
	go func() {
		n, err := rec.record(stop)
		done <- captured{n, err}
	}()

	res := runHost(ctx, h, scrolls, opts)
	close(stop)
	c := <-done
	if c.err != nil {
		logger.Error().Err(c.err).Msg("packet capture stopped early")
	}
	if err := rec.Close(); err != nil {
		logger.Error().Err(err).Msg("close savefile")
	}
	res.PcapPath = rec.path()
	res.Packets = c.packets
	logger.Info().Int("packets", c.packets).Str("file", res.PcapPath).Msg("capture finished")
	return res
}

// allDone reports whether every host finished in the DONE state.
func allDone(results []hostResult) bool {
	for _, r := range results {
		if r.State != stateDone {
			return false
		}
	}
	return true
}
