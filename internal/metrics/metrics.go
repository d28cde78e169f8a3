// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "irishgrants"

	pathLabel   = "path"
	codeLabel   = "code"
	tierLabel   = "tier"
	resultLabel = "result"
)

var httpRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests partitioned by route and status code.",
	},
	[]string{pathLabel, codeLabel},
)

var estimatesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "estimates_total",
		Help:      "EV grant estimates served, by tier minimum price (0 when no tier applies).",
	},
	[]string{tierLabel},
)

var contactSubmissionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contact_submissions_total",
		Help:      "Contact form submissions by outcome.",
	},
	[]string{resultLabel},
)

var brokenLinks = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "broken_links",
		Help:      "Official grant links that failed the last check.",
	},
)

var sourceMismatches = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "source_mismatches",
		Help:      "Grants whose official page no longer shows the advertised maximum.",
	},
)

func IncreaseHTTPRequests(path string, code int) {
	httpRequestsTotal.With(prometheus.Labels{pathLabel: path, codeLabel: strconv.Itoa(code)}).Inc()
}

// IncreaseEstimates records one estimate. minPrice is the applied tier threshold.
func IncreaseEstimates(minPrice int) {
	estimatesTotal.With(prometheus.Labels{tierLabel: strconv.Itoa(minPrice)}).Inc()
}

func IncreaseContactSubmissions(result string) {
	contactSubmissionsTotal.With(prometheus.Labels{resultLabel: result}).Inc()
}

func SetBrokenLinks(n int) {
	brokenLinks.Set(float64(n))
}

func SetSourceMismatches(n int) {
	sourceMismatches.Set(float64(n))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(estimatesTotal)
	prometheus.MustRegister(contactSubmissionsTotal)
	prometheus.MustRegister(brokenLinks)
	prometheus.MustRegister(sourceMismatches)
}
