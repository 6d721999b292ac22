package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromRecorderObserveOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewPromRecorder(reg)
	require.NoError(t, err)

	r.ObserveOperation("solve", "ok", 3*time.Millisecond, 40, 2)
	r.ObserveOperation("solve", "ok", time.Millisecond, 12, 1)
	r.ObserveOperation("match", "infeasible", time.Millisecond, 0, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.operations.WithLabelValues("solve", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.operations.WithLabelValues("match", "infeasible")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.unassigned.WithLabelValues("solve")))
}

func TestPromRecorderReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromRecorder(reg)
	require.NoError(t, err)
	second, err := NewPromRecorder(reg)
	require.NoError(t, err)

	first.RecordRequest("/api/schedule", 10)
	second.RecordRequest("/api/schedule", 5)
	assert.Equal(t, 15.0, testutil.ToFloat64(second.members.WithLabelValues("/api/schedule")))
}
