// Package publish delivers blink events to a message broker without
// blocking the frame loop.
package publish

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// DefaultPayloadFormat is the message an ESP32 subscriber expects
const DefaultPayloadFormat = "Hello ESP32: %d"

// Sink accepts a message for a topic. Implementations may fail; callers never retry.
type Sink interface {
	Publish(ctx context.Context, topic, payload string) error
	Close() error
}

// Message is one queued delivery
type Message struct {
	Topic   string
	Payload string
}

// FormatPayload renders the blink count with format, using DefaultPayloadFormat when empty.
func FormatPayload(format string, count int) string {
	if format == "" {
		format = DefaultPayloadFormat
	}
	return fmt.Sprintf(format, count)
}

// LogSink only logs messages. Useful without network access.
type LogSink struct {
	Logger logrus.FieldLogger
}

func (s *LogSink) Publish(_ context.Context, topic, payload string) error {
	s.Logger.WithFields(logrus.Fields{"topic": topic, "payload": payload}).Info("Event")
	return nil
}

func (s *LogSink) Close() error { return nil }
