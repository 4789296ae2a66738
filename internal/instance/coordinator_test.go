package instance

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/GriffinCanCode/webshell/internal/monitoring"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// socketPath returns a path short enough for sun_path.
func socketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "ws")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "i.sock")
}

type activations struct {
	mu   sync.Mutex
	args [][]string
}

func (a *activations) activate(_ context.Context, args []string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.args = append(a.args, args)
	return nil
}

func (a *activations) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.args)
}

func serve(t *testing.T, c *Coordinator, activate ActivateFunc) {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- c.Serve(activate, monitoring.NewMetrics()) }()
	t.Cleanup(func() {
		assert.NoError(t, c.Close())
		assert.NoError(t, <-done)
	})
}

func TestSecondAcquireIsNotPrimary(t *testing.T) {
	path := socketPath(t)

	primary, err := Acquire(path, zap.NewNop())
	require.NoError(t, err)
	acts := &activations{}
	serve(t, primary, acts.activate)

	_, err = Acquire(path, zap.NewNop())
	assert.ErrorIs(t, err, ErrNotPrimary)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client := NewClient(path)
	require.NoError(t, client.Activate(ctx, []string{"--hidden"}))
	require.NoError(t, client.Activate(ctx, nil))

	assert.Equal(t, 2, acts.count())
	assert.Equal(t, []string{"--hidden"}, acts.args[0])
	assert.True(t, client.Healthy(ctx))
}

func TestActivateFailureIsReported(t *testing.T) {
	path := socketPath(t)

	primary, err := Acquire(path, nil)
	require.NoError(t, err)
	serve(t, primary, func(context.Context, []string) error {
		return errors.New("session stopped")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.Error(t, NewClient(path).Activate(ctx, nil))
}

func TestStaleSocketIsReclaimed(t *testing.T) {
	path := socketPath(t)

	stale, err := net.Listen("unix", path)
	require.NoError(t, err)
	stale.(*net.UnixListener).SetUnlinkOnClose(false)
	require.NoError(t, stale.Close())
	_, err = os.Stat(path)
	require.NoError(t, err)

	c, err := Acquire(path, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, path, c.Path())
	assert.NoError(t, c.Close())
}

func TestConcurrentReclaimHasOnePrimary(t *testing.T) {
	for range 20 {
		path := socketPath(t)

		stale, err := net.Listen("unix", path)
		require.NoError(t, err)
		stale.(*net.UnixListener).SetUnlinkOnClose(false)
		require.NoError(t, stale.Close())

		const launchers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			primaries []*Coordinator
		)
		for range launchers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c, err := Acquire(path, zap.NewNop())
				if err != nil {
					assert.ErrorIs(t, err, ErrNotPrimary)
					return
				}
				mu.Lock()
				primaries = append(primaries, c)
				mu.Unlock()
			}()
		}
		wg.Wait()

		require.Len(t, primaries, 1)
		require.NoError(t, primaries[0].Close())
	}
}

func TestCloseReleasesLock(t *testing.T) {
	path := socketPath(t)

	first, err := Acquire(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Acquire(path, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, second.Close())
}

func TestActivateWithoutPrimaryFails(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client := NewClient(socketPath(t))
	assert.Error(t, client.Activate(ctx, nil))
	assert.False(t, client.Healthy(ctx))
}

func TestActivateIsThrottled(t *testing.T) {
	c := &Coordinator{log: zap.NewNop()}
	acts := &activations{}
	router := c.Router(acts.activate, nil)

	limited := 0
	for range activationBurst + 10 {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/activate", strings.NewReader(`{"args":[]}`))
		router.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}

	assert.Positive(t, limited)
	assert.GreaterOrEqual(t, acts.count(), activationBurst)
}

func TestRouterHealthAndMetrics(t *testing.T) {
	c := &Coordinator{log: zap.NewNop()}
	router := c.Router((&activations{}).activate, monitoring.NewMetrics())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/activate", strings.NewReader("not json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "webshell_instance_requests_total")
}
