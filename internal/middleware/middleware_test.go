package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/wordrooms/internal/testutil"
)

func panicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	http.Error(w, "recovered", http.StatusInternalServerError)
}

func TestRecoveryWritesErrorBeforeResponse(t *testing.T) {
	logger, logs := testutil.CaptureLogger()
	h := Recovery(logger, panicHandler)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/rooms", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "recovered")
	assert.True(t, logs.Contains("panic recovered"))
}

func TestRecoverySkipsHandlerAfterResponseStarted(t *testing.T) {
	logger, logs := testutil.CaptureLogger()
	h := Recovery(logger, panicHandler)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("partial"))
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, "partial", rr.Body.String())
	assert.True(t, logs.Contains("response_started=true"))
}

func TestLoggingRecordsStatusAndSize(t *testing.T) {
	logger, logs := testutil.CaptureLogger()
	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/check_word", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.True(t, logs.Contains("status=418"))
	assert.True(t, logs.Contains("size=15"))
	assert.True(t, logs.Contains("path=/check_word"))
}

func TestHijackUnsupported(t *testing.T) {
	rw := &ResponseWriter{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}

	_, _, err := rw.Hijack()
	assert.Error(t, err)
	assert.False(t, rw.Started())
}
