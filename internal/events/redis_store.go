package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const runTTL = 7 * 24 * time.Hour

var claimTaskScript = redis.NewScript(`
    -- KEYS = [tasks sorted set]
    -- ARGV = [member, observed score, lease until]

    local score = redis.call("ZSCORE", KEYS[1], ARGV[1])
    if not score or tonumber(score) ~= tonumber(ARGV[2]) then
        return 0
    end

    redis.call("ZADD", KEYS[1], ARGV[3], ARGV[1])
    return 1
`)

// RedisStore keeps step checkpoints in one hash per run and scheduled tasks
// in a sorted set scored by due time in unix milliseconds.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisStore) runKey(runID string) string {
	return fmt.Sprintf("%s:run:%s", r.prefix, runID)
}

func (r *RedisStore) tasksKey() string {
	return r.prefix + ":tasks"
}

func (r *RedisStore) lockKey(key string) string {
	return fmt.Sprintf("%s:lock:%s", r.prefix, key)
}

func (r *RedisStore) LoadStep(ctx context.Context, runID, stepID string) ([]byte, bool, error) {
	data, err := r.client.HGet(ctx, r.runKey(runID), stepID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, err
	}

	return data, true, nil
}

func (r *RedisStore) SaveStep(ctx context.Context, runID, stepID string, data []byte) error {
	key := r.runKey(runID)

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, stepID, data)
	pipe.Expire(ctx, key, runTTL)

	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisStore) Schedule(ctx context.Context, task Task) error {
	member, err := json.Marshal(task)
	if err != nil {
		return err
	}

	return r.client.ZAdd(ctx, r.tasksKey(), redis.Z{
		Score:  float64(task.At.UnixMilli()),
		Member: string(member),
	}).Err()
}

func (r *RedisStore) Due(ctx context.Context, now time.Time, limit int) ([]Task, error) {
	entries, err := r.client.ZRangeByScoreWithScores(ctx, r.tasksKey(), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, err
	}

	tasks := make([]Task, 0, len(entries))

	for _, entry := range entries {
		member, ok := entry.Member.(string)
		if !ok {
			continue
		}

		var task Task

		err = json.Unmarshal([]byte(member), &task)
		if err != nil {
			// Unreadable entries would be returned forever otherwise.
			r.client.ZRem(ctx, r.tasksKey(), member)
			continue
		}

		// The score moves when a task is leased, the encoded time does not.
		task.At = time.UnixMilli(int64(entry.Score)).UTC()
		task.raw = member
		tasks = append(tasks, task)
	}

	return tasks, nil
}

func (r *RedisStore) member(task Task) (string, error) {
	if task.raw != "" {
		return task.raw, nil
	}

	data, err := json.Marshal(task)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func (r *RedisStore) Claim(ctx context.Context, task Task, leaseUntil time.Time) (bool, error) {
	member, err := r.member(task)
	if err != nil {
		return false, err
	}

	claimed, err := claimTaskScript.Run(
		ctx,
		r.client,
		[]string{r.tasksKey()},
		member,
		task.At.UnixMilli(),
		leaseUntil.UnixMilli(),
	).Int()
	if err != nil {
		return false, err
	}

	return claimed == 1, nil
}

func (r *RedisStore) Complete(ctx context.Context, task Task) error {
	member, err := r.member(task)
	if err != nil {
		return err
	}

	return r.client.ZRem(ctx, r.tasksKey(), member).Err()
}

func (r *RedisStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, r.lockKey(key), 1, ttl).Result()
}
