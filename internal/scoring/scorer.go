// Package scoring reduces a session's two timing vectors (CPU and
// network challenge round-trip times) to a single 0-100 capability
// score.
package scoring

import "errors"

// Dimension holds the per-challenge-kind thresholds used to map a mean
// timing into a 0-50 partial score.
type Dimension struct {
	IdealMS uint64 // timings at or below this score full credit
	MaxMS   uint64 // timings strictly above this reject the session
}

// Validate checks that a Dimension's thresholds are sane.
func (d Dimension) Validate() error {
	if d.MaxMS <= d.IdealMS {
		return errors.New("scoring: max_ms must be greater than ideal_ms")
	}
	return nil
}

// Config bundles the CPU and network dimensions used by Score.
type Config struct {
	CPU     Dimension
	Network Dimension
}

// Validate checks both dimensions.
func (c Config) Validate() error {
	if err := c.CPU.Validate(); err != nil {
		return err
	}
	if err := c.Network.Validate(); err != nil {
		return err
	}
	return nil
}

// Score reduces cpuTimings and networkTimings to a 0-100 score.
//
// Any timing strictly above its dimension's MaxMS rejects the session
// outright (score 0). Otherwise each dimension's arithmetic mean is
// mapped into a 0-50 partial: 0 at or below IdealMS, 50 at MaxMS,
// linear (truncating integer division) in between. The final score is
// 100 minus the sum of the two partials, so a computed score reaches 0
// only when both means sit exactly at their MaxMS.
func Score(cfg Config, cpuTimings, networkTimings []uint64) int {
	if exceedsMax(cpuTimings, cfg.CPU.MaxMS) || exceedsMax(networkTimings, cfg.Network.MaxMS) {
		return 0
	}

	cpuPartial := partial(mean(cpuTimings), cfg.CPU)
	networkPartial := partial(mean(networkTimings), cfg.Network)

	return 100 - (cpuPartial + networkPartial)
}

func exceedsMax(timings []uint64, maxMS uint64) bool {
	for _, t := range timings {
		if t > maxMS {
			return true
		}
	}
	return false
}

func mean(timings []uint64) uint64 {
	var sum uint64
	for _, t := range timings {
		sum += t
	}
	return sum / uint64(len(timings))
}

func partial(meanMS uint64, d Dimension) int {
	if meanMS <= d.IdealMS {
		return 0
	}
	return int((meanMS - d.IdealMS) * 50 / (d.MaxMS - d.IdealMS))
}
