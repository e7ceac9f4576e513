package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMiddleware_LogsRequest(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	h := middleware.RequestID(Middleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	})))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "/health", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
	assert.EqualValues(t, len("short and stout"), fields["bytes"])
	assert.NotEmpty(t, fields["request_id"])
}

func TestNew(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		log, err := New(env)
		require.NoError(t, err)
		assert.NotNil(t, log)
	}
}
