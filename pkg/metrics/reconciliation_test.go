package metrics

import (
	"errors"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconciliationObserver_RecordRun(t *testing.T) {
	reg := promclient.NewRegistry()
	o, err := NewReconciliationObserver("test", reg)
	require.NoError(t, err)

	o.RecordRun("manual", 20*time.Millisecond, 3, 5, nil)
	o.RecordRun("scheduled", 10*time.Millisecond, 0, 4, nil)
	o.RecordRun("scheduled", time.Millisecond, 0, 0, errors.New("db down"))

	assert.Equal(t, float64(3), testutil.ToFloat64(o.expired))
	assert.Equal(t, float64(4), testutil.ToFloat64(o.expiringSoon))
	assert.Equal(t, float64(1), testutil.ToFloat64(o.runs.WithLabelValues("manual", OutcomeSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(o.runs.WithLabelValues("scheduled", OutcomeFailure)))
}

func TestReconciliationObserver_ReusesRegisteredCollectors(t *testing.T) {
	reg := promclient.NewRegistry()
	first, err := NewReconciliationObserver("test", reg)
	require.NoError(t, err)
	second, err := NewReconciliationObserver("test", reg)
	require.NoError(t, err)

	first.RecordRun("manual", time.Millisecond, 2, 0, nil)
	assert.Equal(t, float64(2), testutil.ToFloat64(second.expired))
}

func TestReconciliationObserver_NilIsNoop(t *testing.T) {
	var o *ReconciliationObserver
	assert.NotPanics(t, func() {
		o.RecordRun("manual", time.Millisecond, 1, 1, nil)
	})
}
