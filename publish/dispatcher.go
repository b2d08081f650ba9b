package publish

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/veendy/blink-counter/metrics"
)

const (
	DefaultQueueSize      = 16
	defaultPublishTimeout = 5 * time.Second
)

var (
	ErrQueueFull = errors.New("publish queue full")
	ErrClosed    = errors.New("dispatcher closed")
)

// Dispatcher delivers messages to a Sink from a single background worker.
// Messages are delivered in the order they were enqueued. Failed deliveries
// are logged and dropped.
type Dispatcher struct {
	sink    Sink
	logger  logrus.FieldLogger
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	queue  chan Message

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewDispatcher starts a worker draining a queue of queueSize messages into sink.
func NewDispatcher(sink Sink, queueSize int, logger logrus.FieldLogger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		sink:    sink,
		logger:  logger,
		timeout: defaultPublishTimeout,
		queue:   make(chan Message, queueSize),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go d.run()
	return d
}

// Enqueue schedules msg for delivery. It never blocks.
func (d *Dispatcher) Enqueue(msg Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		metrics.PublishDropped.Inc()
		return ErrClosed
	}

	select {
	case d.queue <- msg:
		return nil
	default:
		metrics.PublishDropped.Inc()
		return ErrQueueFull
	}
}

// Close stops accepting messages and waits for queued ones to be delivered.
// When ctx expires first, in-flight and remaining deliveries are abandoned.
// The sink is closed in both cases.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	var err error
	select {
	case <-d.done:
	case <-ctx.Done():
		err = ctx.Err()
		d.cancel()
		<-d.done
	}
	d.cancel()

	if cerr := d.sink.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for msg := range d.queue {
		if d.ctx.Err() != nil {
			metrics.PublishDropped.Inc()
			continue
		}
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
	defer cancel()

	if err := d.sink.Publish(ctx, msg.Topic, msg.Payload); err != nil {
		metrics.Publishes.WithLabelValues("error").Inc()
		d.logger.WithError(err).WithField("topic", msg.Topic).Warn("Publish failed, event dropped")
		return
	}

	metrics.Publishes.WithLabelValues("ok").Inc()
	d.logger.WithFields(logrus.Fields{"topic": msg.Topic, "payload": msg.Payload}).Debug("Published")
}
