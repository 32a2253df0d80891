package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yogitha-Turumella/MEDASSIST/internal/backend"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/cache"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/config"
	"github.com/Yogitha-Turumella/MEDASSIST/pkg/logging"
)

const doctorsBody = `[{"id":"d1","name":"Dr. Meena","rating":4.9,"verified":true},` +
	`{"id":"d2","name":"Dr. Kiran","rating":4.5,"verified":true}]`

// newBackedService wires a real configured facade against a counting
// fake backend server.
func newBackedService(t *testing.T, window time.Duration) (*Service, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/doctors" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("order") != "rating.desc" {
			t.Errorf("expected rating.desc order, got %s", r.URL.Query().Get("order"))
		}
		hits.Add(1)
		_, _ = w.Write([]byte(doctorsBody))
	}))
	t.Cleanup(server.Close)

	logger := logging.New("error")
	be := backend.New(&config.Config{
		SupabaseURL:     server.URL,
		SupabaseAnonKey: "anon-key",
	}, backend.WithLogger(logger))

	svc := NewService(be, cache.NewMemory(), cache.NewCoalescer(window), 5*time.Minute, logger, nil)
	return svc, &hits
}

func TestListVerifiedDoctorsCachesSnapshot(t *testing.T) {
	svc, hits := newBackedService(t, 0)

	first, err := svc.ListVerifiedDoctors(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "d1", first[0].ID, "rating-descending order preserved")

	second, err := svc.ListVerifiedDoctors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second, "cache hit returns the identical payload")

	assert.Equal(t, int32(1), hits.Load(), "second call inside the window makes no network call")
}

func TestListVerifiedDoctorsCoalescesConcurrentCallers(t *testing.T) {
	svc, hits := newBackedService(t, 50*time.Millisecond)

	const n = 6
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doctors, err := svc.ListVerifiedDoctors(context.Background())
			assert.NoError(t, err)
			assert.Len(t, doctors, 2)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), hits.Load(), "rapid-fire callers share one backend query")
}

func TestListVerifiedDoctorsRefreshesAfterExpiry(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(doctorsBody))
	}))
	t.Cleanup(server.Close)

	logger := logging.New("error")
	be := backend.New(&config.Config{
		SupabaseURL:     server.URL,
		SupabaseAnonKey: "anon-key",
	}, backend.WithLogger(logger))

	// Short TTL so the snapshot goes stale quickly.
	svc := NewService(be, cache.NewMemory(), cache.NewCoalescer(0), 30*time.Millisecond, logger, nil)

	_, err := svc.ListVerifiedDoctors(context.Background())
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	_, err = svc.ListVerifiedDoctors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "a stale snapshot triggers exactly one new query")
}

func TestListVerifiedDoctorsOffline(t *testing.T) {
	logger := logging.New("error")
	be := backend.New(&config.Config{}, backend.WithLogger(logger))
	svc := NewService(be, cache.NewMemory(), cache.NewCoalescer(0), 5*time.Minute, logger, nil)

	doctors, err := svc.ListVerifiedDoctors(context.Background())
	require.NoError(t, err, "offline reads never error")
	assert.NotNil(t, doctors)
	assert.Empty(t, doctors)
}
