package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewarePreservesFlusher(t *testing.T) {
	// Event-stream handlers flush after every event; the wrapper must not
	// hide the underlying writer's Flush.
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		require.True(t, ok, "wrapped writer must still implement http.Flusher")
		w.Write([]byte("data: {}\n\n"))
		flusher.Flush()
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/posts/available/watch", nil))

	assert.True(t, rec.Flushed, "Flush must reach the underlying writer")
	assert.Equal(t, "data: {}\n\n", rec.Body.String())
}

// plainWriter has no Flush method.
type plainWriter struct {
	header http.Header
}

func (w *plainWriter) Header() http.Header        { return w.header }
func (w *plainWriter) Write(b []byte) (int, error) { return len(b), nil }
func (w *plainWriter) WriteHeader(int)            {}

func TestMiddlewareFlushOnUnflushableWriter(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Must not panic when the underlying writer cannot flush
		w.(http.Flusher).Flush()
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(&plainWriter{header: http.Header{}}, httptest.NewRequest("GET", "/health", nil))
}

func TestMiddlewareCapturesStatusCode(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
