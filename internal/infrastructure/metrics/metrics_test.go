package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
)

type fakePublisher struct{ err error }

func (p fakePublisher) Publish(context.Context, inventory.Event) error { return p.err }

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest("POST", "/api/admin/inventory/adjustments", 201, 15*time.Millisecond)
	m.ObserveRequest("POST", "/api/admin/inventory/adjustments", 201, 20*time.Millisecond)
	m.ObserveRequest("POST", "/api/admin/inventory/adjustments", 400, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("POST", "/api/admin/inventory/adjustments", "201")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("POST", "/api/admin/inventory/adjustments", "400")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))
}

func TestInstrumentPublisher(t *testing.T) {
	m := New()
	ok := m.InstrumentPublisher(fakePublisher{})
	failing := m.InstrumentPublisher(fakePublisher{err: errors.New("broker caído")})

	require.NoError(t, ok.Publish(context.Background(), inventory.Event{Type: inventory.EventAdjustmentApproved}))
	assert.Error(t, failing.Publish(context.Background(), inventory.Event{Type: inventory.EventAdjustmentApproved}))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsTotal.WithLabelValues(inventory.EventAdjustmentApproved, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsTotal.WithLabelValues(inventory.EventAdjustmentApproved, "error")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/health", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), "inventory_ledger_http_requests_total")
	assert.Contains(t, string(body), "go_goroutines")
}
