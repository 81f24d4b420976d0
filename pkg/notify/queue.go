package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Delivery priorities. The dispatcher enqueues at PriorityLow so bursts of
// chain mutations do not starve higher-priority work.
const (
	PriorityLowest = 1
	PriorityLow    = 2
	PriorityNormal = 5
	PriorityHigh   = 8
)

// DefaultDelay is how long an enqueued notification waits before it is
// eligible for delivery.
const DefaultDelay = 5 * time.Second

// Job is a deferred delivery unit: one payload for one target address.
type Job struct {
	ID       string    `json:"id"`
	Address  string    `json:"address"`
	Payload  Payload   `json:"payload"`
	Priority int       `json:"priority"`
	Enqueued time.Time `json:"enqueued"`
}

// TaskQueue schedules a payload for out-of-band delivery after a delay.
// Enqueue must fail fast; it runs inline with a writer's transaction.
type TaskQueue interface {
	Enqueue(ctx context.Context, address string, p Payload, delay time.Duration, priority int) error
}

// popDueScript atomically takes every job whose ready time has passed.
// KEYS[1] = scheduled zset
// ARGV[1] = now (unix millis)
// ARGV[2] = batch limit
var popDueScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])

local jobs = redis.call("ZRANGEBYSCORE", key, "-inf", now, "LIMIT", 0, limit)
if #jobs > 0 then
    redis.call("ZREM", key, unpack(jobs))
end
return jobs
`)

// RedisTaskQueue implements TaskQueue on a redis sorted set scored by the
// job's ready time. Jobs are opaque JSON members; priority orders jobs only
// within a popped batch, matching the queue's best-effort contract.
type RedisTaskQueue struct {
	client *redis.Client
	key    string
}

func NewRedisTaskQueue(client *redis.Client, key string) *RedisTaskQueue {
	if key == "" {
		key = "safeindex:notifications:scheduled"
	}
	return &RedisTaskQueue{client: client, key: key}
}

func (q *RedisTaskQueue) Enqueue(ctx context.Context, address string, p Payload, delay time.Duration, priority int) error {
	job := Job{
		ID:       uuid.NewString(),
		Address:  address,
		Payload:  p,
		Priority: priority,
		Enqueued: time.Now().UTC(),
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}

	readyAt := job.Enqueued.Add(delay)
	err = q.client.ZAdd(ctx, q.key, redis.Z{
		Score:  float64(readyAt.UnixMilli()),
		Member: data,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to enqueue notification for %s: %w", address, err)
	}
	return nil
}

// PopDue removes and returns up to limit jobs whose delay has elapsed,
// highest priority first within the batch.
func (q *RedisTaskQueue) PopDue(ctx context.Context, now time.Time, limit int) ([]Job, error) {
	res, err := popDueScript.Run(ctx, q.client, []string{q.key}, now.UnixMilli(), limit).StringSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to pop due jobs: %w", err)
	}

	jobs := make([]Job, 0, len(res))
	for _, raw := range res {
		var job Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			return nil, fmt.Errorf("corrupt job in queue: %w", err)
		}
		jobs = append(jobs, job)
	}
	sortJobs(jobs)
	return jobs, nil
}

// Len returns the number of scheduled jobs.
func (q *RedisTaskQueue) Len(ctx context.Context) (int64, error) {
	return q.client.ZCard(ctx, q.key).Result()
}

// sortJobs orders a batch by priority (desc), then enqueue time (asc).
func sortJobs(jobs []Job) {
	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].Priority != jobs[j].Priority {
			return jobs[i].Priority > jobs[j].Priority
		}
		return jobs[i].Enqueued.Before(jobs[j].Enqueued)
	})
}

var _ TaskQueue = (*RedisTaskQueue)(nil)
