package metric

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/sessiongate/internal/core/domain"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.registry == nil {
		t.Error("registry field is nil")
	}
	if r.GatewayRequests == nil || r.GatewayDuration == nil {
		t.Error("gateway metrics are nil")
	}
	if r.FormSubmissions == nil {
		t.Error("FormSubmissions is nil")
	}
	if r.SessionClears == nil {
		t.Error("SessionClears is nil")
	}
}

func TestGlobal(t *testing.T) {
	if Global() != Global() {
		t.Error("Global() should return the same instance")
	}
}

func TestGatewayMetrics(t *testing.T) {
	r := NewRegistry()

	r.ObserveGatewayCall("login", "ok", 0.02)
	r.ObserveGatewayCall("login", "ok", 0.03)
	r.ObserveGatewayCall("login", "auth", 0.01)

	if got := testutil.ToFloat64(r.GatewayRequests.WithLabelValues("login", "ok")); got != 2 {
		t.Errorf("login/ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.GatewayRequests.WithLabelValues("login", "auth")); got != 1 {
		t.Errorf("login/auth = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(r.GatewayDuration); n != 1 {
		t.Errorf("duration series = %d, want 1", n)
	}
}

func TestFormAndSessionMetrics(t *testing.T) {
	r := NewRegistry()

	r.ObserveSubmission("login", "succeeded")
	r.ObserveSubmission("login", "invalid")
	r.ObserveSubmission("login", "invalid")
	r.IncSessionClear()

	if got := testutil.ToFloat64(r.FormSubmissions.WithLabelValues("login", "invalid")); got != 2 {
		t.Errorf("login/invalid = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.SessionClears); got != 1 {
		t.Errorf("SessionClears = %v, want 1", got)
	}
}

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	r.ObserveGatewayCall("login", "ok", 0.1)
	r.ObserveSubmission("login", "succeeded")
	r.IncSessionClear()
}

func TestRegistryHandler(t *testing.T) {
	r := NewRegistry()
	r.ObserveGatewayCall("profile", "ok", 0.01)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `sessiongate_gateway_requests_total{op="profile",outcome="ok"} 1`) {
		t.Errorf("missing gateway counter in output:\n%s", body)
	}
}

func TestWriteToTextfile(t *testing.T) {
	r := NewRegistry()
	r.IncSessionClear()

	path := filepath.Join(t.TempDir(), "sessiongate.prom")
	if err := r.WriteToTextfile(path); err != nil {
		t.Fatalf("WriteToTextfile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "sessiongate_session_auth_clears_total 1") {
		t.Errorf("unexpected textfile content:\n%s", data)
	}
}

func TestConcurrentMetricUpdates(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.ObserveGatewayCall("verify", "ok", 0.001)
				r.ObserveSubmission("signup", "succeeded")
			}
		}()
	}
	wg.Wait()

	if got := testutil.ToFloat64(r.GatewayRequests.WithLabelValues("verify", "ok")); got != 1000 {
		t.Errorf("verify/ok = %v, want 1000", got)
	}
}

type fakeSource struct {
	sess     *domain.Session
	degraded bool
}

func (f *fakeSource) Get() (*domain.Session, bool) { return f.sess, f.sess != nil }
func (f *fakeSource) Degraded() bool               { return f.degraded }

func TestCollector(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{}
	c := NewCollector(src)
	c.now = func() time.Time { return now }

	expected := `
# HELP sessiongate_session_authenticated 1 if a valid session is held.
# TYPE sessiongate_session_authenticated gauge
sessiongate_session_authenticated 0
# HELP sessiongate_session_storage_degraded 1 if the session is only held in memory.
# TYPE sessiongate_session_storage_degraded gauge
sessiongate_session_storage_degraded 0
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"sessiongate_session_authenticated", "sessiongate_session_storage_degraded")
	if err != nil {
		t.Errorf("logged out: %v", err)
	}

	src.sess = &domain.Session{Token: "t1", ExpiresAt: now.Add(90 * time.Second)}
	src.degraded = true
	expected = `
# HELP sessiongate_session_authenticated 1 if a valid session is held.
# TYPE sessiongate_session_authenticated gauge
sessiongate_session_authenticated 1
# HELP sessiongate_session_remaining_seconds Seconds until the held session expires.
# TYPE sessiongate_session_remaining_seconds gauge
sessiongate_session_remaining_seconds 90
# HELP sessiongate_session_storage_degraded 1 if the session is only held in memory.
# TYPE sessiongate_session_storage_degraded gauge
sessiongate_session_storage_degraded 1
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected)); err != nil {
		t.Errorf("logged in: %v", err)
	}
}
