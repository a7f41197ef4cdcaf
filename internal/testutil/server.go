package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// TaskServer is an httptest server that implements both task endpoints.
// GET /nextpath points at /<FixturePath>/ on the same server, which returns
// the configured response code.
type TaskServer struct {
	*httptest.Server

	mu           sync.Mutex
	hits         map[string]int
	responseCode string
	failNext     map[string]int
}

// NewTaskServer starts a TaskServer returning responseCode and registers its
// shutdown with t.Cleanup.
func NewTaskServer(t *testing.T, responseCode string) *TaskServer {
	t.Helper()

	ts := &TaskServer{
		hits:         make(map[string]int),
		responseCode: responseCode,
		failNext:     make(map[string]int),
	}
	ts.Server = httptest.NewServer(http.HandlerFunc(ts.serve))
	t.Cleanup(ts.Close)
	return ts
}

// Root returns the API root URL.
func (ts *TaskServer) Root() string {
	return ts.URL
}

// Hits returns the number of requests served for path.
func (ts *TaskServer) Hits(path string) int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.hits[path]
}

// FailNext makes the next n requests to path answer with 500.
func (ts *TaskServer) FailNext(path string, n int) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.failNext[path] = n
}

// SetResponseCode changes the response code served from now on.
func (ts *TaskServer) SetResponseCode(code string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.responseCode = code
}

func (ts *TaskServer) serve(w http.ResponseWriter, r *http.Request) {
	ts.mu.Lock()
	ts.hits[r.URL.Path]++
	fail := ts.failNext[r.URL.Path] > 0
	if fail {
		ts.failNext[r.URL.Path]--
	}
	code := ts.responseCode
	ts.mu.Unlock()

	if fail {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch strings.Trim(r.URL.Path, "/") {
	case "nextpath":
		_, _ = fmt.Fprintf(w, `{"next_path": %q}`, ts.URL+"/"+FixturePath+"/")
	case FixturePath:
		_, _ = fmt.Fprintf(w, `{"path": %q, "response_code": %q}`, FixturePath, code)
	default:
		http.NotFound(w, r)
	}
}
