package selection

import (
	"fmt"
	"math"
	"strings"
)

// Strategy selects how the criterion of a supernode is measured.
type Strategy uint8

const (
	// StrategyLoad ranks supernodes by the load they report.
	StrategyLoad Strategy = 1
	// StrategyRTT ranks supernodes by measured round-trip time.
	StrategyRTT Strategy = 2
	// StrategyMAC ranks supernodes by their identity address, giving every
	// client the same ordering without live measurements.
	StrategyMAC Strategy = 3
)

// String returns the configuration name of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyLoad:
		return "load"
	case StrategyRTT:
		return "rtt"
	case StrategyMAC:
		return "mac"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// ParseStrategy parses a strategy name as used in configuration files.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "load", "":
		return StrategyLoad, nil
	case "rtt":
		return StrategyRTT, nil
	case "mac":
		return StrategyMAC, nil
	default:
		return 0, fmt.Errorf("unknown selection strategy %q", name)
	}
}

// Criterion sentinels. Lower criteria are preferred.
const (
	// CriterionGood forces a temporary preference, e.g. right after a fresh
	// handshake.
	CriterionGood uint64 = 0
	// CriterionDefault seeds a candidate that has never been measured.
	CriterionDefault uint64 = math.MaxUint64 >> 1
	// CriterionBad deprioritizes an unreachable or stale candidate without
	// removing it.
	CriterionBad uint64 = math.MaxUint64
)

// clampMeasured keeps a measured criterion strictly between the good and
// bad sentinels.
func clampMeasured(c uint64) uint64 {
	switch {
	case c <= CriterionGood:
		return CriterionGood + 1
	case c >= CriterionBad:
		return CriterionBad - 1
	default:
		return c
	}
}

// degrade moves c halfway toward CriterionBad.
func degrade(c uint64) uint64 {
	return c + (CriterionBad-c)/2
}

// saturatingAdd adds without wrapping past math.MaxUint64.
func saturatingAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

// CriterionWidth is the fixed display width of CriterionString.
const CriterionWidth = 15

// Display limits of CriterionString; larger measured values render
// saturated rather than cut off.
const (
	maxLoadDisplay = 99999999
	maxRTTDisplay  = 999999
)

// CriterionString renders the peer's criterion for the management surface
// as exactly CriterionWidth columns. Candidates pinned at CriterionBad render
// blank and candidates degraded past CriterionDefault render as stale.
func CriterionString(strategy Strategy, peer *Peer) string {
	var s string
	switch c := peer.Criterion; {
	case c == CriterionBad:
		s = ""
	case c == CriterionGood:
		s = "good"
	case c == CriterionDefault:
		s = "pending"
	case c > CriterionDefault:
		s = "stale"
	default:
		switch strategy {
		case StrategyLoad:
			if c > maxLoadDisplay {
				s = fmt.Sprintf("load > %d", maxLoadDisplay)
			} else {
				s = fmt.Sprintf("load = %8d", c)
			}
		case StrategyRTT:
			if c > maxRTTDisplay {
				s = fmt.Sprintf("rtt > %d ms", maxRTTDisplay)
			} else {
				s = fmt.Sprintf("rtt = %6d ms", c)
			}
		case StrategyMAC:
			s = fmt.Sprintf("id %012x", c)
		default:
			s = fmt.Sprintf("%d", c)
			if len(s) > CriterionWidth {
				s = "overflow"
			}
		}
	}
	return fmt.Sprintf("%-*s", CriterionWidth, s)
}
