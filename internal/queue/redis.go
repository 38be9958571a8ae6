package queue

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/probablyup/spectrum/internal/errors"
)

// RedisQueue implements Queue on a Redis list per job name
type RedisQueue struct {
	client *redis.Client
}

// NewRedisQueue creates a new RedisQueue
func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{
		client: client,
	}
}

// Enqueue pushes a JSON-encoded payload onto the job's list
func (q *RedisQueue) Enqueue(ctx context.Context, job string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode job payload")
	}

	if err := q.client.LPush(ctx, queueKey(job), data).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeExternal, "failed to enqueue job")
	}

	return nil
}

// queueKey names the Redis list holding a job's pending payloads
func queueKey(job string) string {
	return "queue:" + job
}
