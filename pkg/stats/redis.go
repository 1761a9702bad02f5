package stats

import (
	"fmt"
	"math"
	"time"

	"github.com/go-redis/redis"
	"github.com/pkg/errors"
)

// Redis keeps per month activity counters.
// Inside docker can be connected as:
//
//	docker exec -it redis redis-cli
//
// View available stats keys:
//
//	127.0.0.1:6379> keys kickstarter/stats/*
//
// Get top contributors:
//
//	127.0.0.1:6379> zrevrange kickstarter/stats/top/2024/6/contribute 0 10 withscores
//
// Query activity of a single address:
//
//	127.0.0.1:6379> hgetall "kickstarter/stats/2024/6/stars1..."
type Redis struct {
	client *redis.Client
	now    func() time.Time
}

// Record bumps the call counter and the volume of metric for subject.
// Returns the number of calls subject made this month.
func (r *Redis) Record(metric, subject string, amount uint64) (int64, error) {
	now := r.now().UTC()

	key := r.makeKey(now, subject)
	top := r.makeTop(now, metric)

	var cmd *redis.IntCmd
	_, err := r.client.TxPipelined(func(p redis.Pipeliner) error {
		cmd = p.HIncrBy(key, metric, 1)
		if amount > 0 {
			p.HIncrBy(key, metric+"_amount", volume(amount))
			p.ZIncrBy(top, float64(amount), subject)
		}
		return nil
	})

	if err != nil {
		return 0, errors.Wrapf(err, "failed to record %q for %q", metric, subject)
	}

	return cmd.Result()
}

// volume saturates amount at the largest value a redis counter can take.
func volume(amount uint64) int64 {
	if amount > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(amount)
}

func (r *Redis) Get(metric, subject string) (int64, error) {
	key := r.makeKey(r.now().UTC(), subject)
	return r.client.HGet(key, metric).Int64()
}

// Top returns up to 10 subjects with the highest volume of metric.
func (r *Redis) Top(metric string) (map[string]int64, error) {
	top := r.makeTop(r.now().UTC(), metric)

	zrange, err := r.client.ZRevRangeWithScores(top, 0, 9).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query top %q", metric)
	}

	ret := make(map[string]int64)
	for _, x := range zrange {
		key := x.Member.(string)
		val := int64(x.Score)

		ret[key] = val
	}

	return ret, nil
}

func (r *Redis) makeKey(now time.Time, subject string) string {
	return fmt.Sprintf("kickstarter/stats/%d/%d/%s", now.Year(), now.Month(), subject)
}

func (r *Redis) makeTop(now time.Time, metric string) string {
	return fmt.Sprintf("kickstarter/stats/top/%d/%d/%s", now.Year(), now.Month(), metric)
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func NewRedis(redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid redis url")
	}

	client := redis.NewClient(opts)
	if err := client.Ping().Err(); err != nil {
		return nil, errors.Wrap(err, "failed to ping redis")
	}

	return &Redis{client: client, now: time.Now}, nil
}
