package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vidrop/domain/scan"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserver_CountsEvents(t *testing.T) {
	frames := testutil.ToFloat64(FramesScannedTotal)
	windows := testutil.ToFloat64(WindowsComparedTotal)

	var o Observer
	o.FrameScanned(scan.FrameProgress{Index: 1})
	o.FrameScanned(scan.FrameProgress{Index: 2})
	o.WindowCompared(scan.Comparison{})

	if got := testutil.ToFloat64(FramesScannedTotal) - frames; got != 2 {
		t.Errorf("frames counter grew by %v, want 2", got)
	}
	if got := testutil.ToFloat64(WindowsComparedTotal) - windows; got != 1 {
		t.Errorf("windows counter grew by %v, want 1", got)
	}
}

func TestObserveScan(t *testing.T) {
	before := testutil.ToFloat64(ScansTotal.WithLabelValues(ResultNoMatch))

	ObserveScan(ResultNoMatch, time.Second)

	if got := testutil.ToFloat64(ScansTotal.WithLabelValues(ResultNoMatch)) - before; got != 1 {
		t.Errorf("no_match counter grew by %v, want 1", got)
	}
}

func TestNewHandler(t *testing.T) {
	ObserveScan(ResultHit, 0)

	srv := httptest.NewServer(NewHandler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "vidrop_scans_total") {
		t.Error("/metrics does not expose vidrop_scans_total")
	}

	health, err := srv.Client().Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	health.Body.Close()
	if health.StatusCode != 200 {
		t.Errorf("/healthz status = %d, want 200", health.StatusCode)
	}
}
