package appointments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yogitha-Turumella/MEDASSIST/internal/backend"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/config"
	"github.com/Yogitha-Turumella/MEDASSIST/pkg/logging"
)

func newTestService(t *testing.T, upstream http.Handler) *Service {
	t.Helper()

	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	logger := logging.New("error")
	be := backend.New(&config.Config{
		SupabaseURL:     server.URL,
		SupabaseAnonKey: "anon-key",
	}, backend.WithLogger(logger))
	return NewService(be, logger)
}

func TestBookInsertsRequestedAppointment(t *testing.T) {
	when := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)

	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/appointments", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "requested", payload["status"])
		assert.Equal(t, "doc-1", payload["doctor_id"])

		_, _ = w.Write([]byte(`[{"id":"appt-1","doctor_id":"doc-1","patient_id":"p1",` +
			`"scheduled_at":"2026-09-01T10:30:00Z","status":"requested"}]`))
	}))

	appt, err := svc.Book(context.Background(), Request{
		PatientID:   "p1",
		DoctorID:    "doc-1",
		ScheduledAt: when,
		Reason:      "follow-up",
	})
	require.NoError(t, err)

	assert.Equal(t, "appt-1", appt.ID)
	assert.Equal(t, "requested", appt.Status)
	assert.True(t, appt.ScheduledAt.Equal(when))
}

func TestBookValidatesInput(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no upstream call expected")
	}))

	_, err := svc.Book(context.Background(), Request{ScheduledAt: time.Now()})
	require.Error(t, err)

	_, err = svc.Book(context.Background(), Request{DoctorID: "doc-1"})
	require.Error(t, err)
}

func TestListForPatientQueryShape(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/appointments", r.URL.Path)
		assert.Equal(t, "eq.p1", r.URL.Query().Get("patient_id"))
		assert.Equal(t, "scheduled_at.asc", r.URL.Query().Get("order"))
		_, _ = w.Write([]byte(`[{"id":"appt-1","status":"confirmed"}]`))
	}))

	appts, err := svc.ListForPatient(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, "confirmed", appts[0].Status)
}

func TestOfflineBookingSynthesizesRecord(t *testing.T) {
	logger := logging.New("error")
	be := backend.New(&config.Config{}, backend.WithLogger(logger))
	svc := NewService(be, logger)

	appt, err := svc.Book(context.Background(), Request{
		DoctorID:    "doc-1",
		ScheduledAt: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err, "bookings still succeed without backend configuration")
	assert.Contains(t, appt.ID, "demo-")
	assert.Equal(t, "doc-1", appt.DoctorID)

	appts, err := svc.ListForPatient(context.Background(), "p1")
	require.NoError(t, err)
	assert.Empty(t, appts)
}

func TestCancelPatchesStatus(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.appt-1", r.URL.Query().Get("id"))

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "cancelled", payload["status"])

		_, _ = w.Write([]byte(`[{"id":"appt-1","status":"cancelled"}]`))
	}))

	require.NoError(t, svc.Cancel(context.Background(), "appt-1"))
}
