package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "coursehub"

var (
	httpBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}
	dbBuckets   = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}
	jobBuckets  = []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60}
)

// Prom holds every collector the api and the worker export. Both processes
// build one; the worker just never touches the http series.
type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec

	DbQueryDuration *prometheus.HistogramVec
	DbErrorsTotal   *prometheus.CounterVec

	// result=hit|miss|error
	CacheResults *prometheus.CounterVec

	// result=done|retry|failed
	JobDuration  *prometheus.HistogramVec
	JobResults   *prometheus.CounterVec
	JobsInFlight prometheus.Gauge

	gatherer prometheus.Gatherer
}

func counter(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func histogram(subsystem, name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
}

// NewProm registers on reg. Handler gathers from reg when it is a
// *prometheus.Registry, otherwise from the default gatherer.
func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: counter("http", "requests_total",
			"Requests served, by route template and status.", "method", "route", "status"),
		RequestsDuration: histogram("http", "request_duration_seconds",
			"Request latency, by route template and status.", httpBuckets, "method", "route", "status"),
		InFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Requests currently being served.",
		}, []string{"method"}),

		DbQueryDuration: histogram("db", "query_duration_seconds",
			"Repository operation latency, by logical op.", dbBuckets, "op", "status"),
		DbErrorsTotal: counter("db", "errors_total",
			"Repository failures, by logical op and error class.", "op", "class"),

		CacheResults: counter("cache", "lookups_total",
			"List cache lookups, by resource and result.", "resource", "result"),

		JobDuration: histogram("jobs", "duration_seconds",
			"Job handling time, by type and result.", jobBuckets, "job_type", "result"),
		JobResults: counter("jobs", "results_total",
			"Job outcomes, by type and result.", "job_type", "result"),
		JobsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "in_flight",
			Help:      "Jobs this process is handling right now.",
		}),
	}

	reg.MustRegister(
		p.RequestsTotal, p.RequestsDuration, p.InFlight,
		p.DbQueryDuration, p.DbErrorsTotal,
		p.CacheResults,
		p.JobDuration, p.JobResults, p.JobsInFlight,
	)

	p.gatherer = prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		p.gatherer = g
	}

	return p
}

func (p *Prom) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}

func (p *Prom) ObserveCache(resource, result string) {
	p.CacheResults.WithLabelValues(resource, result).Inc()
}

func (p *Prom) ObserveJob(jobType, result string, d time.Duration) {
	p.JobResults.WithLabelValues(jobType, result).Inc()
	p.JobDuration.WithLabelValues(jobType, result).Observe(d.Seconds())
}

// GinHandleMiddleware labels by route template so /courses/:id is one
// series. Requests that matched no route share "unmatched".
func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		method := ctx.Request.Method

		inFlight := p.InFlight.WithLabelValues(method)
		inFlight.Inc()
		defer inFlight.Dec()

		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(ctx.Writer.Status())

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
	}
}
