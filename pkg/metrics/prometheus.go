package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus is a Writer backed by prometheus/client_golang. All series
// are labeled by queue name so several schedulers can share one registry.
type Prometheus struct {
	queueSize   *prometheus.GaugeVec
	activeTasks *prometheus.GaugeVec
	enqueued    *prometheus.CounterVec
	dequeued    *prometheus.CounterVec
	rejected    *prometheus.CounterVec
	expired     *prometheus.CounterVec
	settled     *prometheus.CounterVec
}

// NewPrometheus creates a Writer registered on the given registerer.
// Passing nil registers on the default registry.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Prometheus{
		queueSize: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pacer_queue_size",
			Help: "Number of items currently pending in the queue.",
		}, []string{"queue"}),
		activeTasks: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pacer_active_tasks",
			Help: "Number of asynchronous tasks currently in flight.",
		}, []string{"queue"}),
		enqueued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pacer_items_enqueued_total",
			Help: "Items accepted into the queue.",
		}, []string{"queue"}),
		dequeued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pacer_items_dequeued_total",
			Help: "Items handed to a handler or removed by a manual drain.",
		}, []string{"queue"}),
		rejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pacer_items_rejected_total",
			Help: "Items refused because the queue was at capacity.",
		}, []string{"queue"}),
		expired: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pacer_items_expired_total",
			Help: "Items dropped by the expiration sweep before execution.",
		}, []string{"queue"}),
		settled: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pacer_tasks_settled_total",
			Help: "Asynchronous tasks settled, partitioned by outcome.",
		}, []string{"queue", "outcome"}),
	}
}

func (p *Prometheus) QueueSize(queue string, size int) {
	p.queueSize.WithLabelValues(queue).Set(float64(size))
}

func (p *Prometheus) ActiveTasks(queue string, n int) {
	p.activeTasks.WithLabelValues(queue).Set(float64(n))
}

func (p *Prometheus) ItemEnqueued(queue string) {
	p.enqueued.WithLabelValues(queue).Inc()
}

func (p *Prometheus) ItemDequeued(queue string) {
	p.dequeued.WithLabelValues(queue).Inc()
}

func (p *Prometheus) ItemRejected(queue string) {
	p.rejected.WithLabelValues(queue).Inc()
}

func (p *Prometheus) ItemExpired(queue string) {
	p.expired.WithLabelValues(queue).Inc()
}

func (p *Prometheus) TaskSettled(queue string, success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	p.settled.WithLabelValues(queue, outcome).Inc()
}
