package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ParthDesai/reliability-measurement-server/internal/session"
)

func TestLoadProbeConfigDefaults(t *testing.T) {
	cfg := LoadProbeConfig()
	assert.Equal(t, uint32(session.DefaultSquarings), cfg.Squarings)
	assert.Equal(t, session.DefaultCPUCount, cfg.CPUCount)
	assert.Equal(t, session.DefaultNetworkCount, cfg.NetworkCount)
	assert.Equal(t, uint64(4500), cfg.CPUIdealMS)
}

func TestLoadProbeConfigHonorsOverrides(t *testing.T) {
	os.Setenv("PROBE_CPU_COUNT", "3")
	defer os.Unsetenv("PROBE_CPU_COUNT")

	cfg := LoadProbeConfig()
	assert.Equal(t, 3, cfg.CPUCount)
}

func TestSessionConfigRoundTrips(t *testing.T) {
	cfg := LoadProbeConfig()
	sessCfg := cfg.SessionConfig()
	assert.Equal(t, cfg.Squarings, sessCfg.Squarings)
	assert.NoError(t, sessCfg.Scoring.Validate())
}
