package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInitMetrics_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		InitMetrics()
		InitMetrics()
	})
}

func TestCounterVec(t *testing.T) {
	labels := map[string]string{"method": "GET", "path": "/api/v1/orders", "status": "200"}
	before := testutil.ToFloat64(HTTPRequestsTotal.With(labels))

	IncCounterVec(HTTPRequestsTotal, labels)
	IncCounterVec(HTTPRequestsTotal, labels)

	assert.Equal(t, before+2, testutil.ToFloat64(HTTPRequestsTotal.With(labels)))
}

func TestRecordOrderOperation(t *testing.T) {
	ok := OrderOperationsTotal.With(map[string]string{"operation": "create", "result": ResultSuccess})
	failed := OrderOperationsTotal.With(map[string]string{"operation": "create", "result": ResultFailure})
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	RecordOrderOperation("create", nil, 0.01)
	RecordOrderOperation("create", errors.New("insufficient stock"), 0.02)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
}

func TestGauge(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsInProgress)
	IncGauge(HTTPRequestsInProgress)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsInProgress))
	DecGauge(HTTPRequestsInProgress)
	assert.Equal(t, before, testutil.ToFloat64(HTTPRequestsInProgress))
}
