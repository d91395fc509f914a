package fshttp

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics provide Transport HTTP level metrics.
type Metrics struct {
	StatusCode *prometheus.CounterVec
}

// NewMetrics creates a new metrics instance
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		StatusCode: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "status_code",
			Help:      "HTTP responses by host, method and status code",
		}, []string{"host", "method", "code"}),
	}
}

// DefaultMetrics are used for new Transports and registered with the
// default prometheus registry.
var DefaultMetrics = NewMetrics("driveclone")

func init() {
	prometheus.MustRegister(DefaultMetrics.Collectors()...)
}

// Collectors returns all prometheus metrics as collectors for registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	if m == nil {
		return nil
	}
	return []prometheus.Collector{
		m.StatusCode,
	}
}

func (m *Metrics) onResponse(req *http.Request, resp *http.Response) {
	if m == nil {
		return
	}
	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	m.StatusCode.WithLabelValues(req.URL.Host, req.Method, strconv.Itoa(statusCode)).Inc()
}
