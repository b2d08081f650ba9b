package publish

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisSink publishes to a Redis pub/sub channel named after the topic
type RedisSink struct {
	rdb *goredis.Client
}

// DialRedis parses a redis:// URL and checks the server is reachable.
func DialRedis(ctx context.Context, url string) (*RedisSink, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewRedisSink(rdb), nil
}

// NewRedisSink wraps an existing client
func NewRedisSink(rdb *goredis.Client) *RedisSink {
	return &RedisSink{rdb: rdb}
}

func (s *RedisSink) Publish(ctx context.Context, topic, payload string) error {
	if err := s.rdb.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (s *RedisSink) Close() error {
	return s.rdb.Close()
}
