package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mihai-snyk/map-elites/pkg/mapelites/archive"
)

const namespace = "mapelites"

// Recorder exposes archive statistics on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	elites      prometheus.Gauge
	coverage    prometheus.Gauge
	qdScore     prometheus.Gauge
	objMax      prometheus.Gauge
	evaluations prometheus.Counter
	additions   *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		elites: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "archive_elites",
			Help:      "Number of occupied archive cells.",
		}),
		coverage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "archive_coverage",
			Help:      "Fraction of occupied archive cells.",
		}),
		qdScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "archive_qd_score",
			Help:      "Sum of the objectives of all elites.",
		}),
		objMax: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "archive_objective_max",
			Help:      "Best objective in the archive.",
		}),
		evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Number of evaluated solutions.",
		}),
		additions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "additions_total",
			Help:      "Results of inserting solutions into the archive, by status.",
		}, []string{"status"}),
	}
	r.registry.MustRegister(r.elites, r.coverage, r.qdScore, r.objMax, r.evaluations, r.additions)
	return r
}

// Registry returns the registry holding the metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveBatch records the outcome of inserting one batch.
func (r *Recorder) ObserveBatch(status []archive.AddStatus) {
	r.evaluations.Add(float64(len(status)))
	for _, s := range status {
		r.additions.WithLabelValues(s.String()).Inc()
	}
}

// ObserveArchive records the current archive statistics. Objective gauges
// are left untouched while the archive is empty.
func (r *Recorder) ObserveArchive(stats archive.Stats) {
	r.elites.Set(float64(stats.NumElites))
	r.coverage.Set(stats.Coverage)
	if stats.NumElites == 0 {
		return
	}
	r.qdScore.Set(stats.QDScore)
	r.objMax.Set(stats.ObjMax)
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
