package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/sellerhub/backend/internal/domain/bulk"
)

// ErrProgressNotCached is returned when no snapshot exists for an operation
var ErrProgressNotCached = errors.New("cache: no progress snapshot for operation")

// ProgressSnapshot is the cached view of a running bulk operation. Polling
// clients read this instead of hitting the operations table on every tick.
type ProgressSnapshot struct {
	OperationID     uuid.UUID            `json:"operation_id"`
	Type            bulk.OperationType   `json:"type"`
	Status          bulk.OperationStatus `json:"status"`
	TotalItems      int                  `json:"total_items"`
	ProcessedItems  int                  `json:"processed_items"`
	SuccessfulItems int                  `json:"successful_items"`
	FailedItems     int                  `json:"failed_items"`
	Progress        int                  `json:"progress"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// SnapshotFromOperation builds a progress snapshot from the aggregate
func SnapshotFromOperation(op *bulk.BulkOperation) ProgressSnapshot {
	return ProgressSnapshot{
		OperationID:     op.ID,
		Type:            op.Type,
		Status:          op.Status,
		TotalItems:      op.TotalItems,
		ProcessedItems:  op.ProcessedItems,
		SuccessfulItems: op.SuccessfulItems,
		FailedItems:     op.FailedItems,
		Progress:        op.Progress,
		UpdatedAt:       time.Now().UTC(),
	}
}

// ProgressCache stores live progress snapshots of bulk operations
type ProgressCache interface {
	// Put stores a snapshot for the operation
	Put(ctx context.Context, snapshot ProgressSnapshot) error

	// Get retrieves the snapshot for an operation.
	// Returns ErrProgressNotCached when no snapshot exists.
	Get(ctx context.Context, operationID uuid.UUID) (*ProgressSnapshot, error)

	// Drop removes the snapshot, typically once the operation is terminal
	// and the durable record is the source of truth
	Drop(ctx context.Context, operationID uuid.UUID) error
}

// RedisProgressCache implements ProgressCache on Redis with a TTL so
// abandoned operations age out on their own
type RedisProgressCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisProgressCache creates a Redis-backed progress cache
func NewRedisProgressCache(client *redis.Client, ttl time.Duration) *RedisProgressCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisProgressCache{client: client, ttl: ttl}
}

func progressKey(operationID uuid.UUID) string {
	return "bulkop:progress:" + operationID.String()
}

// Put stores a snapshot for the operation
func (c *RedisProgressCache) Put(ctx context.Context, snapshot ProgressSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal progress snapshot: %w", err)
	}
	if err := c.client.Set(ctx, progressKey(snapshot.OperationID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store progress snapshot: %w", err)
	}
	return nil
}

// Get retrieves the snapshot for an operation
func (c *RedisProgressCache) Get(ctx context.Context, operationID uuid.UUID) (*ProgressSnapshot, error) {
	data, err := c.client.Get(ctx, progressKey(operationID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrProgressNotCached
		}
		return nil, fmt.Errorf("failed to read progress snapshot: %w", err)
	}

	var snapshot ProgressSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal progress snapshot: %w", err)
	}
	return &snapshot, nil
}

// Drop removes the snapshot
func (c *RedisProgressCache) Drop(ctx context.Context, operationID uuid.UUID) error {
	return c.client.Del(ctx, progressKey(operationID)).Err()
}

var _ ProgressCache = (*RedisProgressCache)(nil)

// InMemoryProgressCache implements ProgressCache with a map, for single
// instance deployments and tests
type InMemoryProgressCache struct {
	mu        sync.RWMutex
	snapshots map[uuid.UUID]ProgressSnapshot
}

// NewInMemoryProgressCache creates an in-memory progress cache
func NewInMemoryProgressCache() *InMemoryProgressCache {
	return &InMemoryProgressCache{snapshots: make(map[uuid.UUID]ProgressSnapshot)}
}

// Put stores a snapshot for the operation
func (c *InMemoryProgressCache) Put(ctx context.Context, snapshot ProgressSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots[snapshot.OperationID] = snapshot
	return nil
}

// Get retrieves the snapshot for an operation
func (c *InMemoryProgressCache) Get(ctx context.Context, operationID uuid.UUID) (*ProgressSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snapshot, ok := c.snapshots[operationID]
	if !ok {
		return nil, ErrProgressNotCached
	}
	return &snapshot, nil
}

// Drop removes the snapshot
func (c *InMemoryProgressCache) Drop(ctx context.Context, operationID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.snapshots, operationID)
	return nil
}

var _ ProgressCache = (*InMemoryProgressCache)(nil)
