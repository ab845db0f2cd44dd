package common

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ChangeQueueService carries document change events over Redis Streams.
// One stream per collection; each server-side consumer reads through its
// own consumer group, so the audit logger and the fan-out propagator both
// see every ship write independently.
type ChangeQueueService struct {
	client *redis.Client
}

// Ensure the service satisfies the repository-facing interface
var _ ChangePublisher = (*ChangeQueueService)(nil)

// NewChangeQueueService creates a new change queue service
func NewChangeQueueService(client *redis.Client) *ChangeQueueService {
	return &ChangeQueueService{
		client: client,
	}
}

// PublishChange adds a change event to its collection stream.
// XADD stream_name * data <json>
func (s *ChangeQueueService) PublishChange(ctx context.Context, ev *ChangeEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: StreamFor(ev.Collection),
		Values: map[string]interface{}{
			"data": string(data),
		},
	}

	_, err = s.client.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("failed to add to stream: %w", err)
	}

	return nil
}

// PublishChangeBatch adds multiple change events in a single pipeline.
// Used by the fan-out propagator, which touches hundreds of documents per
// invocation.
func (s *ChangeQueueService) PublishChangeBatch(ctx context.Context, evs []*ChangeEvent) error {
	if len(evs) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()

	for _, ev := range evs {
		data, err := json.Marshal(ev)
		if err != nil {
			log.Printf("[ChangeQueue] Warning: failed to marshal event for doc %s: %v", ev.DocID, err)
			continue
		}

		args := &redis.XAddArgs{
			Stream: StreamFor(ev.Collection),
			Values: map[string]interface{}{
				"data": string(data),
			},
		}
		pipe.XAdd(ctx, args)
	}

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to execute batch: %w", err)
	}

	return nil
}

// Dequeue reads the next change event for a consumer group.
// Returns (event, messageID, error); a nil event means the block timed out.
func (s *ChangeQueueService) Dequeue(ctx context.Context, streamName, groupName, consumerName string, blockTime time.Duration) (*ChangeEvent, string, error) {
	args := &redis.XReadGroupArgs{
		Group:    groupName,
		Consumer: consumerName,
		Streams:  []string{streamName, ">"}, // ">" means new messages only
		Count:    1,
		Block:    blockTime,
	}

	streams, err := s.client.XReadGroup(ctx, args).Result()
	if err != nil {
		if err == redis.Nil {
			// No messages available (timeout)
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to read from stream: %w", err)
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, "", nil
	}

	msg := streams[0].Messages[0]

	dataStr, ok := msg.Values["data"].(string)
	if !ok {
		return nil, "", fmt.Errorf("invalid message format: data field missing")
	}

	var ev ChangeEvent
	if err := json.Unmarshal([]byte(dataStr), &ev); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal change event: %w", err)
	}

	return &ev, msg.ID, nil
}

// Ack acknowledges successful processing of a message
func (s *ChangeQueueService) Ack(ctx context.Context, streamName, groupName, messageID string) error {
	return s.client.XAck(ctx, streamName, groupName, messageID).Err()
}

// CreateConsumerGroup creates a consumer group for the stream if it doesn't exist
func (s *ChangeQueueService) CreateConsumerGroup(ctx context.Context, streamName, groupName string) error {
	// XGROUP CREATE stream group 0 MKSTREAM
	err := s.client.XGroupCreateMkStream(ctx, streamName, groupName, "0").Err()
	if err != nil && err.Error() == "BUSYGROUP Consumer Group name already exists" {
		// Group already exists, this is fine
		return nil
	}
	return err
}

// GetQueueLength returns the number of messages in the stream
func (s *ChangeQueueService) GetQueueLength(ctx context.Context, streamName string) (int64, error) {
	length, err := s.client.XLen(ctx, streamName).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue length: %w", err)
	}
	return length, nil
}

// GetPendingCount returns the number of unacknowledged messages for a consumer group
func (s *ChangeQueueService) GetPendingCount(ctx context.Context, streamName, groupName string) (int64, error) {
	pending, err := s.client.XPending(ctx, streamName, groupName).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get pending count: %w", err)
	}
	return pending.Count, nil
}

// TrimStream removes old processed messages, keeping the most recent maxLen
func (s *ChangeQueueService) TrimStream(ctx context.Context, streamName string, maxLen int64) error {
	return s.client.XTrimMaxLen(ctx, streamName, maxLen).Err()
}

// ClaimStale claims messages pending longer than minIdleTime (likely from a
// dead consumer) so another worker can retry them.
func (s *ChangeQueueService) ClaimStale(ctx context.Context, streamName, groupName, consumerName string, minIdleTime time.Duration) ([]*ChangeEvent, []string, error) {
	pending, err := s.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: streamName,
		Group:  groupName,
		Start:  "-",
		End:    "+",
		Count:  100, // Claim up to 100 stale messages at a time
	}).Result()

	if err != nil {
		return nil, nil, fmt.Errorf("failed to get pending messages: %w", err)
	}

	if len(pending) == 0 {
		return nil, nil, nil
	}

	var staleIDs []string
	for _, p := range pending {
		if p.Idle >= minIdleTime {
			staleIDs = append(staleIDs, p.ID)
		}
	}

	if len(staleIDs) == 0 {
		return nil, nil, nil
	}

	messages, err := s.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   streamName,
		Group:    groupName,
		Consumer: consumerName,
		MinIdle:  minIdleTime,
		Messages: staleIDs,
	}).Result()

	if err != nil {
		return nil, nil, fmt.Errorf("failed to claim stale messages: %w", err)
	}

	var evs []*ChangeEvent
	var ids []string
	for _, msg := range messages {
		dataStr, ok := msg.Values["data"].(string)
		if !ok {
			continue
		}
		var ev ChangeEvent
		if err := json.Unmarshal([]byte(dataStr), &ev); err != nil {
			log.Printf("[ChangeQueue] Warning: failed to unmarshal claimed message %s: %v", msg.ID, err)
			continue
		}
		evs = append(evs, &ev)
		ids = append(ids, msg.ID)
	}

	return evs, ids, nil
}
