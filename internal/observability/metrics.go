package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpDurationHistogram *prometheus.HistogramVec
	commandCounter        *prometheus.CounterVec
	eventCounter          *prometheus.CounterVec
	sagaTransitionCounter *prometheus.CounterVec
	sagaActiveGauge       prometheus.Gauge
	overdraftBreachCount  *prometheus.CounterVec
	workerRunCounter      *prometheus.CounterVec
)

// Init registers all Prometheus collectors.
func Init() {
	registerOnce.Do(func() {
		httpDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"})

		commandCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "command_dispatches_total",
			Help: "Command bus dispatch outcomes",
		}, []string{"command", "result"})

		eventCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Domain events published on the event bus",
		}, []string{"event"})

		sagaTransitionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transfer_saga_transitions_total",
			Help: "Transfer coordinator state transitions",
		}, []string{"to"})

		sagaActiveGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transfer_saga_active",
			Help: "Transfer coordinator instances currently in flight",
		})

		overdraftBreachCount = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_overdraft_breaches_total",
			Help: "Accounts found below their overdraft limit during reconciliation",
		}, []string{"account_id"})

		workerRunCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_runs_total",
			Help: "Background worker run outcomes",
		}, []string{"worker", "result"})

		prometheus.MustRegister(
			httpDurationHistogram,
			commandCounter,
			eventCounter,
			sagaTransitionCounter,
			sagaActiveGauge,
			overdraftBreachCount,
			workerRunCounter,
		)
	})
}

func ObserveHTTP(method, path string, status int, duration time.Duration) {
	if httpDurationHistogram == nil {
		return
	}
	httpDurationHistogram.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

func IncrementCommandDispatch(command, result string) {
	if commandCounter == nil {
		return
	}
	commandCounter.WithLabelValues(command, result).Inc()
}

func IncrementEventPublished(event string) {
	if eventCounter == nil {
		return
	}
	eventCounter.WithLabelValues(event).Inc()
}

func IncrementSagaTransition(to string) {
	if sagaTransitionCounter == nil {
		return
	}
	sagaTransitionCounter.WithLabelValues(to).Inc()
}

func AddActiveSagas(delta float64) {
	if sagaActiveGauge == nil {
		return
	}
	sagaActiveGauge.Add(delta)
}

func IncrementOverdraftBreach(accountID string) {
	if overdraftBreachCount == nil {
		return
	}
	overdraftBreachCount.WithLabelValues(accountID).Inc()
}

func IncrementWorkerRun(worker, result string) {
	if workerRunCounter == nil {
		return
	}
	workerRunCounter.WithLabelValues(worker, result).Inc()
}
