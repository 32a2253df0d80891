package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCacheKey(t *testing.T) {
	q := Query{
		Resource: ResourceDoctors,
		Filters:  map[string]string{"verified": "eq.true", "specialization": "eq.cardiology"},
		Order:    "rating.desc",
		Limit:    20,
	}

	// Filter order must not change the key.
	same := Query{
		Resource: ResourceDoctors,
		Filters:  map[string]string{"specialization": "eq.cardiology", "verified": "eq.true"},
		Order:    "rating.desc",
		Limit:    20,
	}
	assert.Equal(t, q.CacheKey(), same.CacheKey())
	assert.Equal(t, "doctors|specialization=eq.cardiology|verified=eq.true|order=rating.desc|limit=20", q.CacheKey())

	assert.NotEqual(t, q.CacheKey(), Query{Resource: ResourceDoctors}.CacheKey())
}

func TestSelect(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/doctors", r.URL.Path)
		assert.Equal(t, "*", r.URL.Query().Get("select"))
		assert.Equal(t, "eq.true", r.URL.Query().Get("verified"))
		assert.Equal(t, "rating.desc", r.URL.Query().Get("order"))
		_, _ = w.Write([]byte(`[{"id":"d1","rating":4.9},{"id":"d2","rating":4.7}]`))
	}))

	rows, err := c.Select(context.Background(), Query{
		Resource: ResourceDoctors,
		Filters:  map[string]string{"verified": "eq.true"},
		Order:    "rating.desc",
	})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestSelectEmptyBodyNormalizes(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	}))

	rows, err := c.Select(context.Background(), Query{Resource: ResourceAppointments})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestSelectUpstreamError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"permission denied for table doctors"}`))
	}))

	_, err := c.Select(context.Background(), Query{Resource: ResourceDoctors})
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusForbidden, ue.Status)
	assert.Contains(t, ue.Message, "permission denied")
}

func TestSelectOne(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "1", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`[{"id":"p1"}]`))
		}))
		row, err := c.SelectOne(context.Background(), Query{Resource: ResourcePatients})
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"p1"}`, string(row))
	})

	t.Run("absent", func(t *testing.T) {
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		}))
		row, err := c.SelectOne(context.Background(), Query{Resource: ResourcePatients})
		require.NoError(t, err)
		assert.Nil(t, row)
	})
}

func TestInsertReturnsRepresentation(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/appointments", r.URL.Path)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "doc-1", payload["doctor_id"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id":"appt-1","doctor_id":"doc-1","status":"requested"}]`))
	}))

	row, err := c.Insert(context.Background(), ResourceAppointments, map[string]string{"doctor_id": "doc-1"})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(row, &got))
	assert.Equal(t, "appt-1", got["id"])
}

func TestUpdateAndDeleteTargetRow(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.appt-1", r.URL.Query().Get("id"))
		switch r.Method {
		case http.MethodPatch:
			_, _ = w.Write([]byte(`[{"id":"appt-1","status":"cancelled"}]`))
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))

	row, err := c.Update(context.Background(), ResourceAppointments, "appt-1", map[string]string{"status": "cancelled"})
	require.NoError(t, err)
	assert.Contains(t, string(row), "cancelled")

	require.NoError(t, c.Delete(context.Background(), ResourceAppointments, "appt-1"))
}
