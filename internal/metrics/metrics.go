// Package metrics provides Prometheus metrics for OlyMatch.
// It tracks the like pipeline end to end: API receipt, queue publish,
// worker processing outcomes, and broker connection health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "olymatch"
)

// Processing results, used as label values on LikesProcessedTotal.
const (
	ResultPersisted   = "persisted"
	ResultMalformed   = "malformed"
	ResultUnknownUser = "unknown_user"
	ResultRequeued    = "requeued"
	ResultDropped     = "dropped"
)

// Producer-side metrics track the API-to-queue path.
var (
	// LikesReceivedTotal counts like submissions received by the API.
	LikesReceivedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "likes_received_total",
			Help:      "Total number of like submissions received by the API",
		},
	)

	// LikesEnqueuedTotal counts intents successfully published to the queue.
	LikesEnqueuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "likes_enqueued_total",
			Help:      "Total number of like intents published to the queue",
		},
	)

	// LikePublishLatency measures time to durably publish one intent,
	// including broker confirmation.
	LikePublishLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "like_publish_latency_seconds",
			Help:      "Time to publish a like intent with broker confirmation in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)
)

// Worker-side metrics track delivery processing.
var (
	// LikesProcessedTotal counts processed deliveries by outcome.
	LikesProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "likes_processed_total",
			Help:      "Total number of processed like deliveries by result",
		},
		[]string{"result"},
	)

	// LikeProcessingLatency measures time to process one delivery.
	LikeProcessingLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "like_processing_latency_seconds",
			Help:      "Time to process a single like delivery in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// QueueReconnectsTotal counts broker session losses on the consumer.
	QueueReconnectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_reconnects_total",
			Help:      "Total number of consumer reconnects to the broker",
		},
	)
)
