/*
Package selection ranks candidate supernodes so an edge can pick the best
one to register with.

Each candidate carries a 64-bit criterion; lower is preferred. Three
sentinels bound the range:

	CriterionGood    forced preference, e.g. after a fresh handshake
	CriterionDefault seed for a candidate that was never measured
	CriterionBad     unreachable or stale, kept but ranked last

Measured criteria always fall strictly between CriterionGood and
CriterionBad.

A round runs on the goroutine that owns the PeerList:

	engine := selection.NewEngine(nil)
	list := selection.NewPeerList()
	h := list.Add(addr, mac)
	list.Record(h, sample, time.Now())
	result := engine.RunRound(runtime, list)
	if result.Changed {
		// re-register with result.Preferred
	}

Strategies:

  - StrategyLoad ranks by the load a supernode reports plus a share of the
    locally pending registrations. The current supernode is credited a
    quarter of its load.
  - StrategyRTT ranks by round-trip time of an echoed millisecond
    timestamp.
  - StrategyMAC ranks by supernode identity, giving every client the same
    ordering with no measurements.

Candidates that miss MaxMissedRounds consecutive rounds are pinned at
CriterionBad until they report again.
*/
package selection
