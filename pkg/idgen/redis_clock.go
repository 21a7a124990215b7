package idgen

import (
	"context"
	"time"

	"github.com/anthanhphan/gosdk/logger"
	"github.com/redis/go-redis/v9"
)

// Clock abstracts the time source for the ID generator.
type Clock interface {
	// Now returns the current timestamp in milliseconds.
	Now() int64
}

// SystemClock uses the local system time.
type SystemClock struct{}

func (s *SystemClock) Now() int64 {
	return time.Now().UnixMilli()
}

// RedisClock reads time from Redis so that coordinators sharing a Redis
// instance agree on ID ordering.
type RedisClock struct {
	client  redis.UniversalClient
	timeout time.Duration
}

func NewRedisClock(client redis.UniversalClient) *RedisClock {
	return &RedisClock{
		client:  client,
		timeout: 200 * time.Millisecond,
	}
}

func (r *RedisClock) Now() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	// TIME returns [seconds, microseconds]
	res, err := r.client.Time(ctx).Result()
	if err != nil {
		logger.Warnw("redis clock unavailable, using local time", "error", err.Error())
		return time.Now().UnixMilli()
	}

	return res.UnixMilli()
}
