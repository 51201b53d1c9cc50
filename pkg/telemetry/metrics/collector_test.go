package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordOperation(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordOperation("start", "success", 50*time.Millisecond)
	c.RecordOperation("start", "success", 70*time.Millisecond)
	c.RecordOperation("continue", "error", 10*time.Millisecond)

	if got := testutil.ToFloat64(c.operationsTotal.WithLabelValues("start", "success")); got != 2 {
		t.Errorf("start/success count = %v", got)
	}
	if got := testutil.ToFloat64(c.operationsTotal.WithLabelValues("continue", "error")); got != 1 {
		t.Errorf("continue/error count = %v", got)
	}
}

func TestRecordOperationEmptyMode(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordOperation("", "error", time.Millisecond)

	if got := testutil.ToFloat64(c.operationsTotal.WithLabelValues("unknown", "error")); got != 1 {
		t.Errorf("unknown/error count = %v", got)
	}
}

func TestRecordProviderCall(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordProviderCall("openai", "gpt-4o-mini", 0.5, 30, 0.003)
	c.RecordProviderCall("openai", "gpt-4o-mini", 0.7, 45, 0)

	if got := testutil.ToFloat64(c.providerRequests.WithLabelValues("openai", "gpt-4o-mini")); got != 2 {
		t.Errorf("requests = %v", got)
	}
	if got := testutil.ToFloat64(c.tokensTotal.WithLabelValues("openai", "gpt-4o-mini")); got != 75 {
		t.Errorf("tokens = %v", got)
	}
	if got := testutil.ToFloat64(c.costTotal.WithLabelValues("openai", "gpt-4o-mini")); got != 0.003 {
		t.Errorf("cost = %v", got)
	}
}

func TestActiveConversationsGauge(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.SetActiveConversations(3)
	if got := testutil.ToFloat64(c.activeConversations); got != 3 {
		t.Errorf("gauge = %v", got)
	}

	c.SetActiveConversations(0)
	if got := testutil.ToFloat64(c.activeConversations); got != 0 {
		t.Errorf("gauge after reset = %v", got)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	c.RecordComparisonSlot("success")
	c.RecordProviderError("anthropic", "rate_limit")

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "saturn_comparison_slots_total") {
		t.Error("comparison slot metric missing from exposition")
	}
	if !strings.Contains(body, `saturn_provider_errors_total{kind="rate_limit",provider="anthropic"}`) {
		t.Error("provider error metric missing from exposition")
	}
}
