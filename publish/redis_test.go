package publish

import (
	"context"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestDialRedis_BadURL(t *testing.T) {
	_, err := DialRedis(context.Background(), "not-a-url")
	assert.ErrorContains(t, err, "parse redis url")
}

func TestRedisSink_PublishUnreachable(t *testing.T) {
	// Port 1 is never a Redis server
	rdb := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	sink := NewRedisSink(rdb)
	defer sink.Close()

	err := sink.Publish(context.Background(), "blinks", "Hello ESP32: 1")
	assert.ErrorContains(t, err, "redis publish")
}
