// Package metrics exports tunnel activity to Prometheus.
//
// A Collector is passed as the observer to transform.NewPipeline and
// selection.NewEngine; Handler exposes the registry for scraping:
//
//	reg := prometheus.NewRegistry()
//	collector, err := metrics.NewCollector(reg)
//	http.Handle("/metrics", metrics.Handler(reg))
package metrics
