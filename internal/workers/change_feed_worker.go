package workers

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"tidewater/harbormaster/internal/common"
	"tidewater/harbormaster/internal/metrics"
)

// ChangeHandler processes one change event. Handlers must be idempotent:
// the stream delivers at least once, and the stale claimer redelivers
// events whose first consumer died mid-flight.
type ChangeHandler func(ctx context.Context, ev *common.ChangeEvent) error

// ChangeFeedWorker drains one collection stream through one consumer
// group. Multiple groups on the same stream each see every event, which
// is how the audit logger and the fan-out both observe ship writes.
type ChangeFeedWorker struct {
	workerID string
	queue    *common.ChangeQueueService
	stream   string
	group    string
	handler  ChangeHandler
	metrics  *metrics.MetricsRegistry
}

// NewChangeFeedWorker creates a new change feed worker
func NewChangeFeedWorker(
	workerID string,
	queue *common.ChangeQueueService,
	stream string,
	group string,
	handler ChangeHandler,
	metricsReg *metrics.MetricsRegistry,
) *ChangeFeedWorker {
	return &ChangeFeedWorker{
		workerID: workerID,
		queue:    queue,
		stream:   stream,
		group:    group,
		handler:  handler,
		metrics:  metricsReg,
	}
}

// Start spawns the consumer goroutines plus one stale-message claimer and
// blocks until the context is cancelled.
func (w *ChangeFeedWorker) Start(ctx context.Context, numWorkers int) error {
	log.Printf("[ChangeFeedWorker] Starting %d consumers for %s (group %s)", numWorkers, w.stream, w.group)

	if err := w.queue.CreateConsumerGroup(ctx, w.stream, w.group); err != nil {
		return fmt.Errorf("failed to create consumer group %s on %s: %w", w.group, w.stream, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		consumerName := fmt.Sprintf("%s-consumer-%d", w.workerID, i)

		go func(consumerName string) {
			defer wg.Done()
			w.processStream(ctx, consumerName)
		}(consumerName)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.claimStaleMessages(ctx)
	}()

	wg.Wait()
	log.Printf("[ChangeFeedWorker] All consumers stopped for %s (group %s)", w.stream, w.group)
	return nil
}

// processStream continuously consumes events from the stream. Events are
// acknowledged only after the handler succeeds; a failed event stays
// pending and is retried by the stale claimer.
func (w *ChangeFeedWorker) processStream(ctx context.Context, consumerName string) {
	processedCount := 0
	errorCount := 0

	for {
		select {
		case <-ctx.Done():
			log.Printf("[%s] Shutting down. Processed: %d, Errors: %d", consumerName, processedCount, errorCount)
			return
		default:
			ev, messageID, err := w.queue.Dequeue(ctx, w.stream, w.group, consumerName, 5*time.Second)
			if err != nil {
				log.Printf("[%s] Error dequeuing: %v", consumerName, err)
				time.Sleep(1 * time.Second) // Back off on error
				continue
			}

			if ev == nil {
				// No messages available (timeout), continue loop
				continue
			}

			if err := w.handler(ctx, ev); err != nil {
				log.Printf("[%s] Error processing %s/%s: %v", consumerName, ev.Collection, ev.DocID, err)
				errorCount++
				if w.metrics != nil {
					w.metrics.ChangeEventsFailed.WithLabelValues(w.stream, w.group).Inc()
				}
				// No ack: the stale claimer retries it once before dropping.
				continue
			}

			processedCount++
			if w.metrics != nil {
				w.metrics.ChangeEventsTotal.WithLabelValues(w.stream, w.group).Inc()
			}

			if err := w.queue.Ack(ctx, w.stream, w.group, messageID); err != nil {
				log.Printf("[%s] Error acknowledging message %s: %v", consumerName, messageID, err)
			}
		}
	}
}

// claimStaleMessages periodically re-delivers events that have been pending
// too long. Claimed events get one more attempt and are then acknowledged
// either way, so a poison message cannot loop forever.
func (w *ChangeFeedWorker) claimStaleMessages(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Minute)
	defer ticker.Stop()

	claimerName := fmt.Sprintf("%s-claimer", w.workerID)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evs, messageIDs, err := w.queue.ClaimStale(ctx, w.stream, w.group, claimerName, 5*time.Minute)
			if err != nil {
				log.Printf("[ChangeFeedWorker] Error claiming stale messages on %s: %v", w.stream, err)
				continue
			}

			if len(evs) == 0 {
				continue
			}
			log.Printf("[ChangeFeedWorker] Claimed %d stale messages on %s (group %s)", len(evs), w.stream, w.group)

			for i, ev := range evs {
				if err := w.handler(ctx, ev); err != nil {
					log.Printf("[ChangeFeedWorker] Error processing claimed event %s/%s: %v", ev.Collection, ev.DocID, err)
					if w.metrics != nil {
						w.metrics.ChangeEventsFailed.WithLabelValues(w.stream, w.group).Inc()
					}
				}

				if err := w.queue.Ack(ctx, w.stream, w.group, messageIDs[i]); err != nil {
					log.Printf("[ChangeFeedWorker] Error acknowledging claimed message: %v", err)
				}
			}
		}
	}
}

// reportPendingDepth samples consumer-group lag for the dashboard.
func (w *ChangeFeedWorker) reportPendingDepth(ctx context.Context) {
	if w.metrics == nil {
		return
	}

	pending, err := w.queue.GetPendingCount(ctx, w.stream, w.group)
	if err != nil {
		return
	}
	w.metrics.ChangeFeedLag.WithLabelValues(w.stream, w.group).Set(float64(pending))
}

// MonitorLag periodically publishes queue depth until the context ends.
func (w *ChangeFeedWorker) MonitorLag(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.reportPendingDepth(ctx)
		}
	}
}
