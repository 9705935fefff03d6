package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"dconn.dev/projectgrid/internal/logging"
	"dconn.dev/projectgrid/internal/session"
)

func TestRequestID_Generated(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestRequestID_Reused(t *testing.T) {
	id := uuid.NewString()
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, id)
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, id, seen)
}

func TestLogger(t *testing.T) {
	logger := logging.NewTestLogger()
	h := Logger(logger.Logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/filter/video", nil))

	logger.AssertLogged(t, zapcore.InfoLevel, "request")
	logger.AssertField(t, "request", "path", "/filter/video")
}

func TestRecovery(t *testing.T) {
	logger := logging.NewTestLogger()
	h := Recovery(logger.Logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	logger.AssertLogged(t, zapcore.ErrorLevel, "panic in handler")
}

func TestRecoveryInsideLogger(t *testing.T) {
	logger := logging.NewTestLogger()
	h := Logger(logger.Logger)(Recovery(logger.Logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects/1", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	entries := logger.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(http.StatusInternalServerError), entries[0].ContextMap()["status"])
}

func TestSession(t *testing.T) {
	store := session.NewStore(time.Minute, time.Hour)
	var seen []*session.Session
	h := Session(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, session.FromContext(r.Context()))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Result().Cookies(), "known session is not re-issued")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "forged"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Len(t, rec.Result().Cookies(), 1)

	require.Len(t, seen, 3)
	assert.Same(t, seen[0], seen[1])
	assert.NotSame(t, seen[0], seen[2])
	_, ok := store.Get(seen[2].ID())
	assert.True(t, ok)
}
