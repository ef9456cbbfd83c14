package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricCountFetches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sincelast_count_fetches_total",
		Help: "Number of epoch fetches served, including self-initializing ones.",
	})
	metricResets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sincelast_resets_total",
		Help: "Number of successful counter resets.",
	})
	metricResetFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sincelast_reset_failures_total",
		Help: "Number of reset attempts that failed to persist.",
	})
	metricResetEpoch = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sincelast_reset_epoch_seconds",
		Help: "Currently persisted reset epoch as Unix seconds.",
	})
	metricWSClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sincelast_websocket_clients",
		Help: "Connected websocket watchers.",
	})
)
