package queue

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"

	"github.com/antu/logistics-system/internal/api/metrics"
	"github.com/antu/logistics-system/internal/core/ports"
)

const (
	defaultWorkers = 8
	defaultBuffer  = 256
)

// Dispatcher routes pings to a fixed set of workers using consistent hashing
// on the shipment id, guaranteeing per-shipment append ordering even when
// drivers report in bursts.
type Dispatcher struct {
	workers []chan ports.RecordPingInput
	service ports.TrackingService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers, each
// with a queue of bufferSize pings. Non-positive values fall back to defaults.
func NewDispatcher(numWorkers, bufferSize int, service ports.TrackingService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if bufferSize <= 0 {
		bufferSize = defaultBuffer
	}
	d := &Dispatcher{
		workers: make([]chan ports.RecordPingInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.RecordPingInput, bufferSize)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
	d.log.Info().Int("workers", len(d.workers)).Msg("ping dispatcher started")
}

// Enqueue sends a ping to the worker responsible for its shipment. The call
// is non-blocking up to the worker's buffer capacity.
func (d *Dispatcher) Enqueue(in ports.RecordPingInput) {
	idx := d.shardIndex(in.ShipmentID)
	d.workers[idx] <- in
	metrics.PingQueueDepth.WithLabelValues(workerLabel(idx)).Set(float64(len(d.workers[idx])))
}

// EnqueueBatch enqueues multiple pings preserving per-shipment ordering.
func (d *Dispatcher) EnqueueBatch(pings []ports.RecordPingInput) {
	for _, p := range pings {
		d.Enqueue(p)
	}
}

// shardIndex maps a shipment id deterministically to a worker index.
func (d *Dispatcher) shardIndex(shipmentID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(shipmentID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.RecordPingInput) {
	label := workerLabel(id)
	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-ch:
			if !ok {
				return
			}
			start := time.Now()
			_, err := d.service.RecordPing(ctx, in)
			metrics.PingProcessingDuration.Observe(time.Since(start).Seconds())
			metrics.PingQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err != nil {
				d.log.Error().Err(err).
					Str("shipment_id", in.ShipmentID).
					Str("driver_id", in.DriverID).
					Int("worker_id", id).
					Msg("ping processing failed")
			}
		}
	}
}

func workerLabel(id int) string {
	return fmt.Sprintf("%d", id)
}
