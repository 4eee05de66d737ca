package config

import (
	"github.com/ParthDesai/reliability-measurement-server/internal/scoring"
	"github.com/ParthDesai/reliability-measurement-server/internal/session"
)

// ProbeConfig is the process-level configuration for cmd/probeserver,
// loaded from environment variables the same way the teacher's
// cmd/stratum and cmd/api loadConfig functions do.
type ProbeConfig struct {
	ListenAddr string

	Squarings        uint32
	CPUCount         int
	NetworkKilobytes int
	NetworkCount     int

	CPUIdealMS     uint64
	CPUMaxMS       uint64
	NetworkIdealMS uint64
	NetworkMaxMS   uint64

	WorkerPoolSize int
}

// LoadProbeConfig reads every setting from the environment, falling
// back to the protocol's fixed defaults (spec section 4.6) when unset.
func LoadProbeConfig() ProbeConfig {
	return ProbeConfig{
		ListenAddr:       GetEnv("PROBE_LISTEN_ADDR", ":8080"),
		Squarings:        uint32(GetEnvInt("PROBE_SQUARINGS", session.DefaultSquarings)),
		CPUCount:         GetEnvInt("PROBE_CPU_COUNT", session.DefaultCPUCount),
		NetworkKilobytes: GetEnvInt("PROBE_NETWORK_KILOBYTES", session.DefaultNetworkKilobytes),
		NetworkCount:     GetEnvInt("PROBE_NETWORK_COUNT", session.DefaultNetworkCount),
		CPUIdealMS:       uint64(GetEnvInt64("PROBE_CPU_IDEAL_MS", 4500)),
		CPUMaxMS:         uint64(GetEnvInt64("PROBE_CPU_MAX_MS", 120000)),
		NetworkIdealMS:   uint64(GetEnvInt64("PROBE_NETWORK_IDEAL_MS", 200)),
		NetworkMaxMS:     uint64(GetEnvInt64("PROBE_NETWORK_MAX_MS", 25000)),
		WorkerPoolSize:   GetEnvInt("PROBE_WORKER_POOL_SIZE", 0),
	}
}

// SessionConfig converts ProbeConfig into the session.Config the
// Driver is built with.
func (c ProbeConfig) SessionConfig() session.Config {
	return session.Config{
		Squarings:        c.Squarings,
		CPUCount:         c.CPUCount,
		NetworkKilobytes: c.NetworkKilobytes,
		NetworkCount:     c.NetworkCount,
		Scoring: scoring.Config{
			CPU:     scoring.Dimension{IdealMS: c.CPUIdealMS, MaxMS: c.CPUMaxMS},
			Network: scoring.Dimension{IdealMS: c.NetworkIdealMS, MaxMS: c.NetworkMaxMS},
		},
	}
}
