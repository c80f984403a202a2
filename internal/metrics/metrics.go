// Package metrics counts what a pipeline run did, for export to the
// Prometheus textfile collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "streaming_history"

// Pipeline holds the counters of one run. It satisfies genre.Recorder.
type Pipeline struct {
	registry *prometheus.Registry

	events       *prometheus.CounterVec
	lookups      *prometheus.CounterVec
	rounds       prometheus.Counter
	gaveUp       prometheus.Counter
	cacheEntries prometheus.Gauge
}

// New returns a Pipeline registered on its own registry.
func New() *Pipeline {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Pipeline{
		registry: reg,
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Play events read, by whether they counted as a listen.",
		}, []string{"result"}),
		lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "genre_lookups_total",
			Help:      "Genre lookups against the tag source, by outcome.",
		}, []string{"outcome"}),
		rounds: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "genre_lookup_rounds_total",
			Help:      "Fetch rounds run by the genre resolver.",
		}),
		gaveUp: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "genre_lookups_abandoned_total",
			Help:      "Artists cached without genres after every round failed.",
		}),
		cacheEntries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "genre_cache_entries",
			Help:      "Artists in the genre cache after the run.",
		}),
	}
}

// Events counts accepted and rejected play events.
func (p *Pipeline) Events(accepted, rejected int) {
	p.events.WithLabelValues("accepted").Add(float64(accepted))
	p.events.WithLabelValues("rejected").Add(float64(rejected))
}

func (p *Pipeline) LookupFound()  { p.lookups.WithLabelValues("found").Inc() }
func (p *Pipeline) LookupEmpty()  { p.lookups.WithLabelValues("empty").Inc() }
func (p *Pipeline) LookupFailed() { p.lookups.WithLabelValues("failed").Inc() }
func (p *Pipeline) Round()        { p.rounds.Inc() }

func (p *Pipeline) GaveUp(n int) {
	p.gaveUp.Add(float64(n))
}

// CacheEntries records the size of the saved cache.
func (p *Pipeline) CacheEntries(n int) {
	p.cacheEntries.Set(float64(n))
}

// Registry exposes the underlying registry.
func (p *Pipeline) Registry() *prometheus.Registry {
	return p.registry
}

// WriteTextfile writes the counters in the text exposition format.
func (p *Pipeline) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, p.registry)
}
