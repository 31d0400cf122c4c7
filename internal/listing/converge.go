package listing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DefaultStallLimit is the number of consecutive no-growth iterations the
// loop tolerates before treating the feed as exhausted.
const DefaultStallLimit = 3

// Feed is a live, lazily loading result feed.
type Feed interface {
	// WaitForResults blocks until at least one result is rendered.
	WaitForResults(ctx context.Context) error
	Snapshot(ctx context.Context) (Snapshot, error)
	// Advance asks the feed to load its next chunk.
	Advance(ctx context.Context) error
}

// ExitReason says why a convergence loop stopped.
type ExitReason string

const (
	ExitConverged ExitReason = "converged"
	ExitStalled   ExitReason = "stalled"
	ExitTimeout   ExitReason = "timeout"
)

// Converger drives a Feed until it has revealed enough records or stops
// growing. A Converger holds no per-request state and may be shared.
type Converger struct {
	SettleInterval     time.Duration
	FirstResultTimeout time.Duration
	// Timeout bounds the whole loop. Expiry ends the loop with whatever was
	// accumulated. Zero disables it.
	Timeout    time.Duration
	StallLimit int
	// Probe defaults to the package-level Probe.
	Probe func(Snapshot) ([]Record, error)
}

type convergenceState struct {
	accumulated   []Record
	previousCount int
	stallCount    int
}

// Converge returns the records visible once the feed holds at least target
// items, stalled, or ran out of time. The result may be shorter than target.
// Errors from the feed other than the bounded first-result wait are fatal.
func (c *Converger) Converge(ctx context.Context, feed Feed, target int) ([]Record, error) {
	log := zerolog.Ctx(ctx)
	started := time.Now()

	loopCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		loopCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	if err := c.waitForFirst(loopCtx, feed); err != nil {
		if ctx.Err() != nil || loopCtx.Err() == nil {
			return nil, fmt.Errorf("wait for results: %w", err)
		}
		log.Warn().Msg("Feed did not finish loading before the loop timeout")
		return []Record{}, nil
	}

	probe := c.Probe
	if probe == nil {
		probe = Probe
	}

	state := convergenceState{accumulated: []Record{}, previousCount: -1}
	reason := ExitConverged
	for len(state.accumulated) < target {
		snap, err := feed.Snapshot(loopCtx)
		if err != nil {
			if timedOut(ctx, loopCtx) {
				reason = ExitTimeout
				break
			}
			return nil, fmt.Errorf("take snapshot: %w", err)
		}
		records, err := probe(snap)
		if err != nil {
			return nil, fmt.Errorf("extract records: %w", err)
		}
		if state.observe(records, c.stallLimit()) {
			reason = ExitStalled
			break
		}
		log.Debug().
			Int("extracted", len(state.accumulated)).
			Int("target", target).
			Int("stalls", state.stallCount).
			Time("taken_at", snap.TakenAt).
			Msg("Extracted feed snapshot")

		if err := feed.Advance(loopCtx); err != nil {
			if timedOut(ctx, loopCtx) {
				reason = ExitTimeout
				break
			}
			return nil, fmt.Errorf("advance feed: %w", err)
		}
		if !c.settle(loopCtx) {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			reason = ExitTimeout
			break
		}
	}

	log.Info().
		Str("reason", string(reason)).
		Int("found", len(state.accumulated)).
		Int("target", target).
		Dur("took", time.Since(started)).
		Msg("Feed extraction finished")
	return state.accumulated, nil
}

// observe folds one probe result into the state and reports whether the
// stall limit was exceeded. A shorter result never replaces a longer one.
func (s *convergenceState) observe(records []Record, stallLimit int) bool {
	if len(records) >= len(s.accumulated) {
		s.accumulated = records
	}
	if len(s.accumulated) == s.previousCount {
		s.stallCount++
		if s.stallCount > stallLimit {
			return true
		}
	} else {
		s.stallCount = 0
	}
	s.previousCount = len(s.accumulated)
	return false
}

// waitForFirst swallows its own timeout: an empty feed is a valid outcome.
func (c *Converger) waitForFirst(ctx context.Context, feed Feed) error {
	waitCtx := ctx
	if c.FirstResultTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, c.FirstResultTimeout)
		defer cancel()
	}
	err := feed.WaitForResults(waitCtx)
	if err != nil && waitCtx.Err() != nil && ctx.Err() == nil {
		zerolog.Ctx(ctx).Warn().
			Dur("timeout", c.FirstResultTimeout).
			Msg("No results appeared before the first-result timeout")
		return nil
	}
	return err
}

func (c *Converger) settle(ctx context.Context) bool {
	if c.SettleInterval <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(c.SettleInterval)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Converger) stallLimit() int {
	if c.StallLimit <= 0 {
		return DefaultStallLimit
	}
	return c.StallLimit
}

// timedOut reports whether the loop deadline fired while the caller's own
// context is still live.
func timedOut(parent, loop context.Context) bool {
	return loop.Err() != nil && parent.Err() == nil
}
