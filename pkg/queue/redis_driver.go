package queue

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// redisQueueKey is the ready list; workers on any instance BRPOP it.
	redisQueueKey = "agriconnect:queue:jobs"
	// redisDelayedKey is a sorted set scored by due unix time.
	redisDelayedKey = "agriconnect:queue:delayed"

	popTimeout      = 5 * time.Second
	promoteInterval = time.Second
	promoteBatch    = 100
)

// RedisDriver is the durable transport. Jobs land in a Redis list shared
// by every instance, and delayed jobs wait in a sorted set until a
// promoter goroutine moves them onto the list.
type RedisDriver struct {
	client *redis.Client
}

// NewRedisDriver wraps an existing Redis connection (the cache's) as a
// queue transport and starts the delayed-job promoter.
func NewRedisDriver(client *redis.Client) *RedisDriver {
	d := &RedisDriver{client: client}
	go d.promote()
	return d
}

// Push enqueues payload on the ready list.
func (d *RedisDriver) Push(payload []byte) error {
	if err := d.client.LPush(context.Background(), redisQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("queue: redis push: %w", err)
	}
	return nil
}

// Pop blocks up to popTimeout for a job, returning nil, nil when the
// window lapses empty so workers can check for shutdown.
func (d *RedisDriver) Pop(ctx context.Context) ([]byte, error) {
	res, err := d.client.BRPop(ctx, popTimeout, redisQueueKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("queue: redis pop: %w", err)
	}
	// BRPOP returns [key, value].
	if len(res) < 2 {
		return nil, nil
	}
	return []byte(res[1]), nil
}

// PushDelayed parks payload in the delayed set, scored by when it is due.
func (d *RedisDriver) PushDelayed(payload []byte, delay time.Duration) error {
	due := float64(time.Now().Add(delay).Unix())
	err := d.client.ZAdd(context.Background(), redisDelayedKey, redis.Z{
		Score:  due,
		Member: payload,
	}).Err()
	if err != nil {
		return fmt.Errorf("queue: redis delayed push: %w", err)
	}
	return nil
}

// promote moves due jobs from the delayed set to the ready list, a batch
// per tick. Every instance runs one; the ZREM makes the hand-off safe,
// since only the instance that removed a member may enqueue it.
func (d *RedisDriver) promote() {
	tick := time.NewTicker(promoteInterval)
	defer tick.Stop()

	for range tick.C {
		now := strconv.FormatInt(time.Now().Unix(), 10)
		due, err := d.client.ZRangeByScore(context.Background(), redisDelayedKey, &redis.ZRangeBy{
			Min:   "-inf",
			Max:   now,
			Count: promoteBatch,
		}).Result()
		if err != nil || len(due) == 0 {
			continue
		}

		for _, member := range due {
			removed, err := d.client.ZRem(context.Background(), redisDelayedKey, member).Result()
			if err != nil || removed == 0 {
				continue
			}
			d.client.LPush(context.Background(), redisQueueKey, member) //nolint:errcheck
		}
	}
}
