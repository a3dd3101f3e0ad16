package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func passingCheck() CheckFunc {
	return func(_ context.Context) error {
		return nil
	}
}

func failingCheck(msg string) CheckFunc {
	return func(_ context.Context) error {
		return errors.New(msg)
	}
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func serve(t *testing.T, endpoint http.HandlerFunc) (int, statusResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	endpoint(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var body statusResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return w.Code, body
}

func TestLiveEndpoint_NoChecks(t *testing.T) {
	code, body := serve(t, New().LiveEndpoint)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
	assert.Empty(t, body.Checks)
}

func TestLiveEndpoint_FailureThreshold(t *testing.T) {
	h := New()
	h.Add(Check{Name: "goroutines", Kind: Liveness, Func: failingCheck("too many")})

	ctx := context.Background()
	h.probes[0].run(ctx)
	h.probes[0].run(ctx)

	code, _ := serve(t, h.LiveEndpoint)
	assert.Equal(t, http.StatusOK, code, "two failures stay below the default threshold")

	h.probes[0].run(ctx)

	code, body := serve(t, h.LiveEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "too many", body.Checks["goroutines"])
}

func TestReadyEndpoint_NotReady(t *testing.T) {
	h := New()
	h.Add(Check{Name: "downstream", Kind: Readiness, Func: passingCheck()})

	code, body := serve(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body.Checks, "_readiness")

	h.SetReady(true)
	code, _ = serve(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, h.IsReady())
}

func TestReadyEndpoint_IgnoresLivenessFailures(t *testing.T) {
	h := New()
	h.Add(Check{Name: "live", Kind: Liveness, FailureThreshold: 1, Func: failingCheck("dead")})
	h.SetReady(true)
	h.probes[0].run(context.Background())

	code, _ := serve(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusOK, code)
}

func TestCheckRecovery(t *testing.T) {
	var (
		mu   sync.Mutex
		fail = true
	)
	h := New()
	h.Add(Check{Name: "flaky", Kind: Readiness, FailureThreshold: 1, Func: func(context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return errors.New("down")
		}
		return nil
	}})
	h.SetReady(true)

	ctx := context.Background()
	h.probes[0].run(ctx)
	assert.False(t, h.IsReady())

	mu.Lock()
	fail = false
	mu.Unlock()
	h.probes[0].run(ctx)
	assert.True(t, h.IsReady())
}

func TestStartStop(t *testing.T) {
	h := New()
	h.Add(Check{Name: "down", Kind: Readiness, FailureThreshold: 1, Func: failingCheck("unreachable")})
	h.SetReady(true)

	h.Start(context.Background(), 10*time.Millisecond)
	defer h.Stop()

	require.Eventually(t, func() bool { return !h.IsReady() }, time.Second, 5*time.Millisecond)
	h.Stop()
	h.Stop()
}

func TestPingCheck(t *testing.T) {
	require.NoError(t, PingCheck(pingerFunc(func(context.Context) error { return nil }))(context.Background()))

	err := PingCheck(pingerFunc(func(context.Context) error { return errors.New("refused") }))(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
}

func TestPingCheck_KeepsReadiness(t *testing.T) {
	h := New()
	h.Add(Check{Name: "downstream", Kind: Readiness, Func: PingCheck(pingerFunc(func(context.Context) error { return nil }))})
	h.SetReady(true)

	ctx := context.Background()
	for range 5 {
		h.probes[0].run(ctx)
	}

	code, body := serve(t, h.ReadyEndpoint)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
}

func TestGoroutineCountCheck(t *testing.T) {
	require.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	require.Error(t, GoroutineCountCheck(0)(context.Background()))
}
