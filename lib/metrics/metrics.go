// Package metrics provides Prometheus metrics for driveclone runs.
package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// statusCoder is satisfied by fserrors.StatusError without importing it
type statusCoder interface {
	error
	StatusCode() int
}

var (
	// RemoteCalls counts every attempt of a remote call by outcome
	RemoteCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driveclone_remote_calls_total",
			Help: "Total number of remote call attempts",
		},
		[]string{"status"},
	)

	// RemoteRetries counts attempts which were retried
	RemoteRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "driveclone_remote_retries_total",
			Help: "Total number of remote calls retried after a transient error",
		},
	)

	// ItemsCreated counts destination items by kind
	ItemsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driveclone_items_created_total",
			Help: "Total number of folders and files created in destinations",
		},
		[]string{"kind"},
	)

	// ShortcutsSkipped counts dangling shortcuts left out of clones
	ShortcutsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "driveclone_shortcuts_skipped_total",
			Help: "Total number of dangling shortcuts skipped",
		},
	)

	// CloneRuns counts finished clone runs by result
	CloneRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driveclone_clone_runs_total",
			Help: "Total number of clone runs",
		},
		[]string{"result"},
	)

	// CloneDuration records the duration of clone runs
	CloneDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "driveclone_clone_duration_seconds",
			Help:    "Time taken to clone a tree",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)
)

// ObserveCall records the outcome of one remote call attempt
func ObserveCall(err error) {
	RemoteCalls.WithLabelValues(callStatus(err)).Inc()
}

func callStatus(err error) string {
	if err == nil {
		return "ok"
	}
	var sc statusCoder
	if errors.As(err, &sc) {
		return strconv.Itoa(sc.StatusCode())
	}
	return "error"
}

// ObserveRun records a finished clone run
func ObserveRun(seconds float64, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	CloneRuns.WithLabelValues(result).Inc()
	CloneDuration.Observe(seconds)
}

// WriteTextfile writes all the registered metrics to path in the
// text exposition format, for the node exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
