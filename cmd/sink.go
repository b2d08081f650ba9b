package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/veendy/blink-counter/publish"
)

func newSink(ctx context.Context, flags *pflag.FlagSet, logger logrus.FieldLogger) (publish.Sink, error) {
	kind, _ := flags.GetString("sink")

	switch kind {
	case "mqtt":
		broker, _ := flags.GetString("broker")
		qos, _ := flags.GetUint8("qos")
		if qos > 2 {
			return nil, fmt.Errorf("invalid qos %d", qos)
		}
		return publish.DialMQTT(publish.MQTTConfig{Broker: broker, QoS: qos}, logger)
	case "redis":
		url, _ := flags.GetString("redis-url")
		return publish.DialRedis(ctx, url)
	case "log":
		return &publish.LogSink{Logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown sink %q", kind)
	}
}
