package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRoute(t *testing.T) {
	m := New()
	m.ObserveRoute("mesh_create", "success", 2*time.Millisecond, 3)
	m.ObserveRoute("mesh_create", "success", time.Millisecond, 1)
	m.ObserveRoute("unknown", "failure", time.Millisecond, 0)
	m.JournalError()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("mesh_create", "success")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.hostCalls))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.journalErrors))

	n, err := testutil.GatherAndCount(m.Registry, "forgecore_requests_total")
	assert.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRoute("export", "success", time.Second, 2)
		m.JournalError()
	})
}
