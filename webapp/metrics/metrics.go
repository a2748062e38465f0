package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	//completion webhook deliveries by outcome: processed, duplicate, ignored, rejected, error
	WebhooksReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transcoder_webhook_deliveries_total",
		Help: "Completion webhook deliveries received, by outcome",
	}, []string{"outcome"})

	JobsDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transcoder_jobs_dispatched_total",
		Help: "Jobs handed to the runner pool",
	})

	RunnerCapacity = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "transcoder_runner_idle_capacity",
		Help: "Idle runner count observed at the most recent admission poll",
	})

	CompletionsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transcoder_completions_total",
		Help: "Terminal job completions recorded, by conclusion",
	}, []string{"conclusion"})
)
