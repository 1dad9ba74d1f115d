// Package metrics defines and registers all custom Prometheus metrics for the
// tracking and dispatch engine. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics register with the default Prometheus registry at init time via
// promauto; the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "logistics"

// ── Ping pipeline metrics ─────────────────────────────────────────────────────

// PingsProcessedTotal counts pings that completed ingestion successfully.
// Label:
//   - deviated: "true" when the ping exceeded the route deviation threshold,
//     "false" otherwise, "unknown" when the shipment has no planned route
var PingsProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pings_processed_total",
		Help:      "Total number of GPS pings successfully ingested.",
	},
	[]string{"deviated"},
)

// PingsErrorsTotal counts pings that failed ingestion.
// Label:
//   - reason: short failure description (e.g. "invalid_coordinate",
//     "shipment_not_found", "shipment_closed", "append_failed")
var PingsErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pings_errors_total",
		Help:      "Total number of GPS pings that failed ingestion.",
	},
	[]string{"reason"},
)

// PingsDedupTotal counts deduplication decisions.
// Label:
//   - result: "hit" (duplicate, skipped) or "miss" (new ping, processed)
var PingsDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pings_dedup_total",
		Help:      "Total number of ping deduplication checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// PingQueueDepth tracks the current number of pings waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var PingQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ping_queue_depth",
		Help:      "Current number of pings pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// PingProcessingDuration measures how long a single ping takes to ingest
// end-to-end, from dequeue to persistence.
var PingProcessingDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ping_processing_duration_seconds",
		Help:      "Duration of ping ingestion from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
)

// ── Dispatch metrics ──────────────────────────────────────────────────────────

// DriverSearchesTotal counts nearest-driver searches.
// Label:
//   - outcome: "matched" or "none_eligible"
var DriverSearchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "driver_searches_total",
		Help:      "Total number of nearest-driver searches, by outcome.",
	},
	[]string{"outcome"},
)

// VehicleSelectionsTotal counts vehicle selections.
// Label:
//   - outcome: "preferred" (tier matched), "fallback", or "none_suitable"
var VehicleSelectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vehicle_selections_total",
		Help:      "Total number of vehicle selections, by outcome.",
	},
	[]string{"outcome"},
)
