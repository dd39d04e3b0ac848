package selection

import "testing"

func benchmarkRound(b *testing.B, strategy Strategy, candidates int) {
	rt, clock := newRuntime(strategy)
	e := NewEngine(nil)
	l := NewPeerList()
	handles := make([]Handle, candidates)
	for i := range handles {
		handles[i] = l.Add(udpAddr(7000+i), mac(byte(i)))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		now := uint64(clock.Now().UnixMilli())
		for j, h := range handles {
			l.Record(h, now-uint64((i+j)%50), clock.Now())
		}
		e.RunRound(rt, l)
	}
}

func BenchmarkRunRoundLoad(b *testing.B) { benchmarkRound(b, StrategyLoad, 64) }

func BenchmarkRunRoundRTT(b *testing.B) { benchmarkRound(b, StrategyRTT, 64) }

func BenchmarkRunRoundMAC(b *testing.B) { benchmarkRound(b, StrategyMAC, 64) }

func BenchmarkSortSorted(b *testing.B) {
	criteria := make([]uint64, 256)
	for i := range criteria {
		criteria[i] = uint64(i + 1)
	}
	l, _ := listWithCriteria(criteria...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Sort(l)
	}
}
