package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveAuth(t *testing.T) {
	before := testutil.ToFloat64(authAttempts.WithLabelValues("local", OutcomeLocked))
	ObserveAuth("local", OutcomeLocked)
	assert.Equal(t, before+1, testutil.ToFloat64(authAttempts.WithLabelValues("local", OutcomeLocked)))
}

func TestSetOnline(t *testing.T) {
	SetOnline(true)
	assert.Equal(t, float64(1), testutil.ToFloat64(online))
	SetOnline(false)
	assert.Equal(t, float64(0), testutil.ToFloat64(online))
}

func TestHandler_ExposesInstruments(t *testing.T) {
	ObserveDocument("signalements", ResultCreated)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "signalements_sync_documents_total")
}
