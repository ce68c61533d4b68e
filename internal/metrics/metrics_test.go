package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorders(t *testing.T) {
	m := New()
	m.RecordBill("indexed")
	m.RecordBill("indexed")
	m.RecordBill("skipped")
	m.RecordVersion(3)
	m.RecordRejection("no_valid_date")
	m.RecordSinkWrite("search_index", "bills", nil, 10*time.Millisecond)
	m.RecordSinkWrite("document_store", "bills", errors.New("boom"), time.Millisecond)

	if got := testutil.ToFloat64(m.BillsTotal.WithLabelValues("indexed")); got != 2 {
		t.Fatalf("indexed bills = %v", got)
	}
	if got := testutil.ToFloat64(m.CitationsExtracted); got != 3 {
		t.Fatalf("citations = %v", got)
	}
	if got := testutil.ToFloat64(m.SinkWritesTotal.WithLabelValues("document_store", "bills", "error")); got != 1 {
		t.Fatalf("failed writes = %v", got)
	}
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	m.RecordBill("indexed")
	m.RecordVersion(1)
	m.RecordRejection("x")
	m.RecordSinkWrite("a", "b", nil, time.Second)
	m.RecordRun(time.Now(), time.Second)
	if err := m.Push("http://localhost:9091", "billindex"); err != nil {
		t.Fatalf("push on nil metrics: %v", err)
	}
}

func TestPushWithoutGatewayIsNoOp(t *testing.T) {
	if err := New().Push("", "billindex"); err != nil {
		t.Fatalf("push: %v", err)
	}
}
