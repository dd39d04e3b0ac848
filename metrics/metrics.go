package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/tuncore/selection"
	"github.com/opd-ai/tuncore/transform"
)

const namespace = "tuncore"

// Collector exports transform and selection activity as Prometheus metrics.
// It implements transform.Observer and selection.Observer.
type Collector struct {
	transformBytes  *prometheus.CounterVec
	transformErrors *prometheus.CounterVec
	fallbacks       *prometheus.CounterVec
	rounds          prometheus.Counter
	criterion       *prometheus.GaugeVec
	changes         prometheus.Counter
}

var (
	_ transform.Observer = (*Collector)(nil)
	_ selection.Observer = (*Collector)(nil)
)

// NewCollector creates the metrics and registers them on reg. A nil reg
// leaves them unregistered.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		transformBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transform",
			Name:      "bytes_total",
			Help:      "Payload bytes fed into a transform.",
		}, []string{"transform", "direction"}),
		transformErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transform",
			Name:      "errors_total",
			Help:      "Packets a transform rejected.",
		}, []string{"transform", "direction"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transform",
			Name:      "fallbacks_total",
			Help:      "Packets sent uncompressed because compression yielded nothing.",
		}, []string{"transform"}),
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "selection",
			Name:      "rounds_total",
			Help:      "Completed supernode selection rounds.",
		}),
		criterion: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "selection",
			Name:      "criterion",
			Help:      "Selection criterion per supernode after the last round; lower is preferred.",
		}, []string{"peer"}),
		changes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "selection",
			Name:      "preferred_changes_total",
			Help:      "Times the preferred supernode changed.",
		}),
	}

	if reg != nil {
		for _, m := range []prometheus.Collector{
			c.transformBytes, c.transformErrors, c.fallbacks,
			c.rounds, c.criterion, c.changes,
		} {
			if err := reg.Register(m); err != nil {
				logrus.WithFields(logrus.Fields{
					"function": "NewCollector",
					"package":  "metrics",
					"error":    err.Error(),
				}).Error("Failed to register metric")
				return nil, err
			}
		}
	}
	return c, nil
}

// ObserveTransform implements transform.Observer.
func (c *Collector) ObserveTransform(id transform.ID, dir transform.Direction, in, _ int, err error) {
	labels := prometheus.Labels{"transform": id.String(), "direction": dir.String()}
	if err != nil {
		c.transformErrors.With(labels).Inc()
		return
	}
	c.transformBytes.With(labels).Add(float64(in))
}

// ObserveFallback implements transform.Observer.
func (c *Collector) ObserveFallback(id transform.ID) {
	c.fallbacks.WithLabelValues(id.String()).Inc()
}

// ObserveRound implements selection.Observer. The criterion gauge is rebuilt
// so removed supernodes disappear.
func (c *Collector) ObserveRound(_ selection.RoundState, ranked []*selection.Peer) {
	c.rounds.Inc()
	c.criterion.Reset()
	for _, p := range ranked {
		c.criterion.WithLabelValues(PeerLabel(p)).Set(float64(p.Criterion))
	}
}

// ObservePreferredChange implements selection.Observer.
func (c *Collector) ObservePreferredChange(_, _ *selection.Peer) {
	c.changes.Inc()
}

// PeerLabel names a supernode by address, falling back to its MAC.
func PeerLabel(p *selection.Peer) string {
	switch {
	case p == nil:
		return ""
	case p.Addr != nil:
		return p.Addr.String()
	case len(p.MAC) > 0:
		return p.MAC.String()
	default:
		return "unknown"
	}
}

// Handler serves the metrics gathered by g in the Prometheus exposition
// format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
