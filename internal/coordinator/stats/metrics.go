package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const Namespace = "ramstore"

var (
	Gather = prometheus.NewRegistry()

	RecoveryCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "coordinator",
			Name:      "recoveries_total",
			Help:      "Counter of finished recoveries by outcome.",
		}, []string{"phase", "fatal"})

	RecoveryActiveGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "coordinator",
			Name:      "recoveries_active",
			Help:      "Recoveries not yet completed or aborted.",
		})

	RecoveryHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "coordinator",
			Name:      "recovery_seconds",
			Help:      "Bucketed histogram of recovery duration.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 16),
		}, []string{"phase"})

	RetrievalCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "coordinator",
			Name:      "retrieval_calls_total",
			Help:      "Counter of GetRecoveryData calls by result.",
		}, []string{"result"})

	FailoverCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "coordinator",
			Name:      "retrieval_failovers_total",
			Help:      "Times a retrieval moved on to a lower priority replica.",
		})

	MissingSegmentCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "coordinator",
			Name:      "missing_segments_total",
			Help:      "Segments declared by a log digest without any located replica.",
		})

	RecoveredRecordCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "coordinator",
			Name:      "recovered_records_total",
			Help:      "Log records retrieved from backups.",
		})
)

func init() {
	Gather.MustRegister(RecoveryCounter)
	Gather.MustRegister(RecoveryActiveGauge)
	Gather.MustRegister(RecoveryHistogram)
	Gather.MustRegister(RetrievalCounter)
	Gather.MustRegister(FailoverCounter)
	Gather.MustRegister(MissingSegmentCounter)
	Gather.MustRegister(RecoveredRecordCounter)
	Gather.MustRegister(collectors.NewGoCollector())
	Gather.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}
