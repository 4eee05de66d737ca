// Package session sequences the fixed challenge protocol a single
// connected client is put through: a fixed count of time-lock (CPU)
// challenges followed by a fixed count of roundtrip (network)
// challenges, reduced to a score and recorded in the result directory.
package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"

	"github.com/google/uuid"

	"github.com/ParthDesai/reliability-measurement-server/internal/directory"
	"github.com/ParthDesai/reliability-measurement-server/internal/protocol"
	"github.com/ParthDesai/reliability-measurement-server/internal/roundtrip"
	"github.com/ParthDesai/reliability-measurement-server/internal/scoring"
	"github.com/ParthDesai/reliability-measurement-server/internal/timelock"
	"github.com/ParthDesai/reliability-measurement-server/internal/transport"
)

// ErrMeasurementFailed is returned when a client fails to correctly
// answer a CPU or network challenge, or disconnects mid-session.
var ErrMeasurementFailed = errors.New("session: measurement failed")

// Defaults mirror the reference protocol's fixed configuration exactly:
// squarings=200000, CPU ideal=4500ms/max=120000ms over 5 challenges;
// network size=1024KiB, ideal=200ms/max=25000ms over 10 challenges.
const (
	DefaultSquarings        = 200000
	DefaultCPUCount         = 5
	DefaultNetworkKilobytes = 1024
	DefaultNetworkCount     = 10
)

// Metrics observes per-challenge and per-session outcomes without
// coupling the driver to a concrete monitoring backend, the same seam
// the teacher threads its PoolMetricsProvider interface through.
type Metrics interface {
	ObserveChallenge(kind string, elapsedMS int64, success bool)
	ObserveSession(score int)
}

// NopMetrics discards every observation. Used by tests and any caller
// that has not wired a real sink.
type NopMetrics struct{}

func (NopMetrics) ObserveChallenge(kind string, elapsedMS int64, success bool) {}
func (NopMetrics) ObserveSession(score int)                                   {}

// Config bundles the fixed challenge-protocol parameters for one Driver.
type Config struct {
	Squarings        uint32
	CPUCount         int
	NetworkKilobytes int
	NetworkCount     int
	Scoring          scoring.Config
}

// Validate checks that cfg describes a runnable session: both challenge
// counts must be at least 1 (scoring.mean divides by the timing vector
// length, so a zero count would panic) and the scoring thresholds must
// be sane.
func (cfg Config) Validate() error {
	if cfg.CPUCount < 1 {
		return fmt.Errorf("session: cpu count must be >= 1, got %d", cfg.CPUCount)
	}
	if cfg.NetworkCount < 1 {
		return fmt.Errorf("session: network count must be >= 1, got %d", cfg.NetworkCount)
	}
	if cfg.Squarings < 1 {
		return fmt.Errorf("session: squarings must be >= 1, got %d", cfg.Squarings)
	}
	if cfg.NetworkKilobytes < 1 {
		return fmt.Errorf("session: network kilobytes must be >= 1, got %d", cfg.NetworkKilobytes)
	}
	return cfg.Scoring.Validate()
}

// DefaultConfig returns the protocol's fixed defaults.
func DefaultConfig() Config {
	return Config{
		Squarings:        DefaultSquarings,
		CPUCount:         DefaultCPUCount,
		NetworkKilobytes: DefaultNetworkKilobytes,
		NetworkCount:     DefaultNetworkCount,
		Scoring: scoring.Config{
			CPU:     scoring.Dimension{IdealMS: 4500, MaxMS: 120000},
			Network: scoring.Dimension{IdealMS: 200, MaxMS: 25000},
		},
	}
}

// Driver runs the fixed challenge sequence for one session over one
// channel, scores the outcome, and records it in a Directory.
type Driver struct {
	cfg     Config
	pool    *timelock.Pool
	dir     *directory.Directory
	metrics Metrics
}

// NewDriver builds a Driver. pool may be nil, in which case each CPU
// challenge generates its puzzle inline rather than on a bounded pool.
// cfg is validated here so a bad configuration (e.g. a zero challenge
// count) fails at construction rather than mid-session.
func NewDriver(cfg Config, pool *timelock.Pool, dir *directory.Directory, metrics Metrics) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Driver{cfg: cfg, pool: pool, dir: dir, metrics: metrics}, nil
}

// Run executes CPUCount CPU challenges followed by NetworkCount network
// challenges over channel, in that fixed order, scores the session, and
// inserts the resulting record into the Driver's Directory under id
// before sending the final Data.Info message. A failure at any
// challenge aborts the run before the directory is touched.
func (d *Driver) Run(ctx context.Context, id uuid.UUID, channel transport.BinaryChannel) (directory.ClientRecord, error) {
	cpuTimings, err := d.runCPUChallenges(ctx, id, channel)
	if err != nil {
		d.sendError(id, channel, "Failed CPU measurements")
		return directory.ClientRecord{}, err
	}

	networkTimings, err := d.runNetworkChallenges(id, channel)
	if err != nil {
		d.sendError(id, channel, "Failed Network measurements")
		return directory.ClientRecord{}, err
	}

	score := scoring.Score(d.cfg.Scoring, cpuTimings, networkTimings)
	record := directory.ClientRecord{
		Score:            score,
		CPUTimingsMS:     cpuTimings,
		NetworkTimingsMS: networkTimings,
	}
	d.dir.Insert(id, record)
	d.metrics.ObserveSession(score)

	info, encErr := protocol.Encode(protocol.DataInfo(fmt.Sprintf("My score is: %d", score)))
	if encErr == nil {
		if sendErr := channel.Send(info); sendErr != nil {
			log.Printf("session %s: final score send failed (record already persisted): %v", id, sendErr)
		}
	}

	return record, nil
}

func (d *Driver) runCPUChallenges(ctx context.Context, id uuid.UUID, channel transport.BinaryChannel) ([]uint64, error) {
	timings := make([]uint64, 0, d.cfg.CPUCount)

	for i := 0; i < d.cfg.CPUCount; i++ {
		puzzle, verifier, err := d.generateCPUPuzzle(ctx)
		if err != nil {
			log.Printf("session %s: cpu puzzle %d generation failed: %v", id, i, err)
			return nil, fmt.Errorf("%w: %v", ErrMeasurementFailed, err)
		}

		challenge, err := protocol.Encode(protocol.ChallengeCPU(puzzle.MarshalWire()))
		if err != nil {
			return nil, fmt.Errorf("%w: encode challenge: %v", ErrMeasurementFailed, err)
		}

		resp, elapsed, err := transport.Exchange(channel, challenge, transport.ReceiveOnly)
		if err != nil {
			d.metrics.ObserveChallenge("cpu", 0, false)
			log.Printf("session %s: cpu challenge %d exchange failed: %v", id, i, err)
			return nil, fmt.Errorf("%w: %v", ErrMeasurementFailed, err)
		}

		if resp.Kind != protocol.KindResponseCPU {
			d.metrics.ObserveChallenge("cpu", elapsed, false)
			return nil, fmt.Errorf("%w: unexpected response kind %d", ErrMeasurementFailed, resp.Kind)
		}

		answer := new(big.Int).SetBytes(resp.Payload)
		if !verifier.Verify(answer) {
			d.metrics.ObserveChallenge("cpu", elapsed, false)
			return nil, fmt.Errorf("%w: cpu challenge %d: verification failed", ErrMeasurementFailed, i)
		}

		d.metrics.ObserveChallenge("cpu", elapsed, true)
		timings = append(timings, uint64(elapsed))
	}

	return timings, nil
}

func (d *Driver) generateCPUPuzzle(ctx context.Context) (timelock.Puzzle, timelock.Verifier, error) {
	if d.pool != nil {
		return d.pool.Generate(ctx, d.cfg.Squarings)
	}
	return timelock.Generate(rand.Reader, d.cfg.Squarings)
}

func (d *Driver) runNetworkChallenges(id uuid.UUID, channel transport.BinaryChannel) ([]uint64, error) {
	timings := make([]uint64, 0, d.cfg.NetworkCount)

	for i := 0; i < d.cfg.NetworkCount; i++ {
		puzzle, verifier, err := roundtrip.Generate(rand.Reader, d.cfg.NetworkKilobytes)
		if err != nil {
			log.Printf("session %s: network puzzle %d generation failed: %v", id, i, err)
			return nil, fmt.Errorf("%w: %v", ErrMeasurementFailed, err)
		}

		challenge, err := protocol.Encode(protocol.ChallengeNetwork(puzzle.Bytes()))
		if err != nil {
			return nil, fmt.Errorf("%w: encode challenge: %v", ErrMeasurementFailed, err)
		}

		resp, elapsed, err := transport.Exchange(channel, challenge, transport.RoundtripInclusive)
		if err != nil {
			d.metrics.ObserveChallenge("network", 0, false)
			log.Printf("session %s: network challenge %d exchange failed: %v", id, i, err)
			return nil, fmt.Errorf("%w: %v", ErrMeasurementFailed, err)
		}

		if resp.Kind != protocol.KindResponseNetwork {
			d.metrics.ObserveChallenge("network", elapsed, false)
			return nil, fmt.Errorf("%w: unexpected response kind %d", ErrMeasurementFailed, resp.Kind)
		}

		if !verifier.Verify(resp.Payload) {
			d.metrics.ObserveChallenge("network", elapsed, false)
			return nil, fmt.Errorf("%w: network challenge %d: verification failed", ErrMeasurementFailed, i)
		}

		d.metrics.ObserveChallenge("network", elapsed, true)
		timings = append(timings, uint64(elapsed))
	}

	return timings, nil
}

func (d *Driver) sendError(id uuid.UUID, channel transport.BinaryChannel, text string) {
	msg, err := protocol.Encode(protocol.DataError(text))
	if err != nil {
		log.Printf("session %s: failed to encode error message: %v", id, err)
		return
	}
	if err := channel.Send(msg); err != nil {
		log.Printf("session %s: failed to send error message: %v", id, err)
	}
}
