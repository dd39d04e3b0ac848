package selection

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelOrdering(t *testing.T) {
	assert.Less(t, CriterionGood, CriterionDefault)
	assert.Less(t, CriterionDefault, CriterionBad)

	for _, c := range []uint64{0, 1, 10, CriterionDefault, math.MaxUint64 - 1, math.MaxUint64} {
		m := clampMeasured(c)
		assert.Greater(t, m, CriterionGood, "measured %d", c)
		assert.Less(t, m, CriterionBad, "measured %d", c)
	}
}

func TestDegrade(t *testing.T) {
	assert.Equal(t, CriterionDefault, degrade(CriterionGood))
	assert.Equal(t, CriterionBad, degrade(CriterionBad))

	c := uint64(10)
	for i := 0; i < 64; i++ {
		next := degrade(c)
		assert.GreaterOrEqual(t, next, c)
		c = next
	}
	assert.Equal(t, CriterionBad-1, c, "only missed rounds pin a candidate at bad")
}

func TestSaturatingAdd(t *testing.T) {
	assert.Equal(t, uint64(5), saturatingAdd(2, 3))
	assert.Equal(t, uint64(math.MaxUint64), saturatingAdd(math.MaxUint64-1, 2))
}

func TestParseStrategy(t *testing.T) {
	for name, want := range map[string]Strategy{"load": StrategyLoad, "RTT": StrategyRTT, " mac ": StrategyMAC, "": StrategyLoad} {
		got, err := ParseStrategy(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
		if name != "" {
			assert.Equal(t, strings.ToLower(strings.TrimSpace(name)), got.String())
		}
	}

	_, err := ParseStrategy("random")
	assert.Error(t, err)
	assert.Equal(t, "Unknown(9)", Strategy(9).String())
}

func TestCriterionString(t *testing.T) {
	tests := []struct {
		name      string
		strategy  Strategy
		criterion uint64
		want      string
	}{
		{"load", StrategyLoad, 1234, "load =     1234"},
		{"rtt", StrategyRTT, 42, "rtt =     42 ms"},
		{"mac", StrategyMAC, 0x0242ac110002, "id 0242ac110002"},
		{"good", StrategyLoad, CriterionGood, "good           "},
		{"default", StrategyRTT, CriterionDefault, "pending        "},
		{"bad", StrategyLoad, CriterionBad, "               "},
		{"widest load", StrategyLoad, 99999999, "load = 99999999"},
		{"load saturated", StrategyLoad, 123456789, "load > 99999999"},
		{"widest rtt", StrategyRTT, 999999, "rtt = 999999 ms"},
		{"rtt saturated", StrategyRTT, 123456789, "rtt > 999999 ms"},
		{"degraded load", StrategyLoad, degrade(10), "stale          "},
		{"degraded rtt", StrategyRTT, degrade(CriterionDefault), "stale          "},
		{"unknown strategy", Strategy(9), 42, "42             "},
		{"unknown strategy too wide", Strategy(9), CriterionDefault - 1, "overflow       "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CriterionString(tt.strategy, &Peer{Criterion: tt.criterion})
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, CriterionWidth)
		})
	}
}
