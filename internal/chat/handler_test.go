package chat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yogitha-Turumella/MEDASSIST/pkg/logging"
)

func TestHandleMessageHTTPFallback(t *testing.T) {
	svc := newTestService(t, sentimentResponse("positive", "Glad to hear it!"), nil)
	h := NewHandler(svc, logging.New("error"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/message",
		strings.NewReader(`{"session_id":"s1","text":"feeling much better today"}`))
	rec := httptest.NewRecorder()
	h.HandleMessage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Glad to hear it!")
	assert.Contains(t, rec.Body.String(), `"session_id":"s1"`)
}

func TestHandleMessageGeneratesSessionID(t *testing.T) {
	svc := newTestService(t, sentimentResponse("neutral", "ok"), nil)
	h := NewHandler(svc, logging.New("error"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/message",
		strings.NewReader(`{"text":"hello"}`))
	rec := httptest.NewRecorder()
	h.HandleMessage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"session_id"`)
}

func TestHandleMessageRejectsEmptyText(t *testing.T) {
	svc := newTestService(t, sentimentResponse("neutral", "ok"), nil)
	h := NewHandler(svc, logging.New("error"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/message",
		strings.NewReader(`{"session_id":"s1","text":"  "}`))
	rec := httptest.NewRecorder()
	h.HandleMessage(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleHistory(t *testing.T) {
	svc := newTestService(t, sentimentResponse("neutral", "ok"), nil)
	h := NewHandler(svc, logging.New("error"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat/message",
		strings.NewReader(`{"session_id":"s1","text":"hello"}`))
	h.HandleMessage(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	h.HandleHistory(rec, httptest.NewRequest(http.MethodGet, "/api/v1/chat/history?session=s1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"user"`)
	assert.Contains(t, rec.Body.String(), `"role":"assistant"`)

	rec = httptest.NewRecorder()
	h.HandleHistory(rec, httptest.NewRequest(http.MethodGet, "/api/v1/chat/history", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
