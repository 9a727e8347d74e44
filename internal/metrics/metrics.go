// Package metrics collects Prometheus metrics for a processing run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder owns a registry for one run and implements cityjson.Observer.
type Recorder struct {
	registry *prometheus.Registry

	ObjectsProcessed *prometheus.CounterVec
	RecordsSkipped   *prometheus.CounterVec
	RoofFaces        prometheus.Counter
	DocumentDuration prometheus.Histogram
}

// New creates a recorder with all metrics registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		ObjectsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mrtools_objects_processed_total",
			Help: "Total number of city objects that received a roof area",
		}, []string{"type"}),
		RecordsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mrtools_records_skipped_total",
			Help: "Total number of geometry records that contributed nothing",
		}, []string{"reason"}),
		RoofFaces: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mrtools_roof_faces_total",
			Help: "Total number of roof faces measured",
		}),
		DocumentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mrtools_document_duration_seconds",
			Help:    "Time to compute roof areas for one document",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}),
	}
	r.registry.MustRegister(r.ObjectsProcessed)
	r.registry.MustRegister(r.RecordsSkipped)
	r.registry.MustRegister(r.RoofFaces)
	r.registry.MustRegister(r.DocumentDuration)
	return r
}

// ObjectProcessed counts one evaluated object and its roof faces.
func (r *Recorder) ObjectProcessed(objectType string, faces int) {
	r.ObjectsProcessed.WithLabelValues(objectType).Inc()
	r.RoofFaces.Add(float64(faces))
}

// RecordSkipped counts one record that contributed nothing.
func (r *Recorder) RecordSkipped(reason string) {
	r.RecordsSkipped.WithLabelValues(reason).Inc()
}

// ObserveDocument records the processing time of one document.
func (r *Recorder) ObserveDocument(d time.Duration) {
	r.DocumentDuration.Observe(d.Seconds())
}

// WriteTextfile writes all metrics in the node-exporter textfile format.
// The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
