// Package metrics exposes Prometheus counters for the blink session.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	// BlinkEvents counts blink events fired by the debouncer
	BlinkEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blink_events_total",
			Help: "Total blink events counted",
		},
	)

	// Frames counts processed frames by detection result (face, no_face, error)
	Frames = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blink_frames_total",
			Help: "Processed frames by detection result",
		},
		[]string{"result"},
	)

	// Publishes counts sink deliveries by status (ok, error)
	Publishes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blink_publish_total",
			Help: "Event deliveries by status",
		},
		[]string{"status"},
	)

	// PublishDropped counts events rejected because the delivery queue was full or closed
	PublishDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blink_publish_dropped_total",
			Help: "Events dropped before delivery",
		},
	)
)

// Frame result labels
const (
	ResultFace   = "face"
	ResultNoFace = "no_face"
	ResultError  = "error"
)

// Handler returns the /metrics handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve runs the metrics listener on addr until ctx is done.
func Serve(ctx context.Context, addr string, logger logrus.FieldLogger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", addr).Info("Metrics listener started")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
