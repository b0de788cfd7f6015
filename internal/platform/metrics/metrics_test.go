package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"syndicate/internal/shared/fault"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveLabelsOutcomeByKind(t *testing.T) {
	recorder := NewRecorder()
	recorder.Observe("ledger", "transfer", nil)
	recorder.Observe("ledger", "transfer", nil)
	recorder.Observe("ledger", "transfer", fault.New(fault.KindInvariantViolation, "insufficient balance"))
	recorder.Observe("ledger", "transfer", errors.New("disk full"))

	assert.Equal(t, 2.0, testutil.ToFloat64(recorder.operations.WithLabelValues("ledger", "transfer", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.operations.WithLabelValues("ledger", "transfer", "invariant_violation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.operations.WithLabelValues("ledger", "transfer", "internal")))
}

func TestObserveRelay(t *testing.T) {
	recorder := NewRecorder()
	recorder.ObserveRelay("governance", 3, nil)
	recorder.ObserveRelay("governance", 0, errors.New("nats down"))

	assert.Equal(t, 3.0, testutil.ToFloat64(recorder.relayed.WithLabelValues("governance")))
	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.relayFails.WithLabelValues("governance")))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var recorder *Recorder
	recorder.Observe("ledger", "transfer", nil)
	recorder.ObserveRelay("ledger", 1, nil)
}

func TestHandlerExposesCounters(t *testing.T) {
	recorder := NewRecorder()
	recorder.Observe("governance", "cast_vote", nil)

	rr := httptest.NewRecorder()
	recorder.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `syndicate_operations_total{module="governance",operation="cast_vote",outcome="ok"} 1`)
}
