package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func boundaryConfig() Config {
	return Config{
		CPU:     Dimension{IdealMS: 100, MaxMS: 1100},
		Network: Dimension{IdealMS: 200, MaxMS: 2200},
	}
}

func TestScoreBoundaryCases(t *testing.T) {
	cfg := boundaryConfig()

	tests := []struct {
		name    string
		cpu     []uint64
		network []uint64
		want    int
	}{
		{
			name:    "mid-range on both axes",
			cpu:     []uint64{200, 300, 200, 500},
			network: []uint64{300, 400, 300, 600},
			want:    85,
		},
		{
			name:    "one cpu timing exceeds max rejects outright",
			cpu:     []uint64{1200, 300, 200, 500},
			network: []uint64{300, 400, 300, 600},
			want:    0,
		},
		{
			name:    "cpu mean below ideal scores full credit on that axis",
			cpu:     []uint64{1, 2, 3, 4},
			network: []uint64{300, 400, 300, 600},
			want:    95,
		},
		{
			name:    "both dimensions exactly at max",
			cpu:     []uint64{1100, 1100, 1100, 1100},
			network: []uint64{2200, 2200, 2200, 2200},
			want:    0,
		},
		{
			name:    "both dimensions exactly at ideal",
			cpu:     []uint64{100, 100, 100, 100},
			network: []uint64{200, 200, 200, 200},
			want:    100,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Score(cfg, tc.cpu, tc.network))
		})
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := boundaryConfig()
	assert.NoError(t, cfg.Validate())

	bad := Config{CPU: Dimension{IdealMS: 100, MaxMS: 100}, Network: boundaryConfig().Network}
	assert.Error(t, bad.Validate())
}
