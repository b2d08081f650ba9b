package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		BlinkEvents,
		Frames,
		Publishes,
		PublishDropped,
	}

	for _, c := range collectors {
		// Re-registering an already registered collector must fail
		err := prometheus.Register(c)
		var are prometheus.AlreadyRegisteredError
		require.ErrorAs(t, err, &are)
	}
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(BlinkEvents)
	BlinkEvents.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(BlinkEvents))

	beforeFace := testutil.ToFloat64(Frames.WithLabelValues(ResultFace))
	Frames.WithLabelValues(ResultFace).Inc()
	assert.Equal(t, beforeFace+1, testutil.ToFloat64(Frames.WithLabelValues(ResultFace)))
}

func TestHandler(t *testing.T) {
	Publishes.WithLabelValues("ok").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "blink_publish_total"))
	assert.True(t, strings.Contains(body, "blink_events_total"))
}
