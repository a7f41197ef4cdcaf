package orchestrator

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Iron-Ham/taskfetch/internal/errors"
	"github.com/Iron-Ham/taskfetch/internal/event"
	"github.com/Iron-Ham/taskfetch/internal/mainloop"
	"github.com/Iron-Ham/taskfetch/internal/metrics"
	"github.com/Iron-Ham/taskfetch/internal/network"
	"github.com/Iron-Ham/taskfetch/internal/storage"
	"github.com/Iron-Ham/taskfetch/internal/task"
	"github.com/Iron-Ham/taskfetch/internal/testutil"
)

// harness runs an Orchestrator on a mainloop.Loop and records bus events.
type harness struct {
	orch  *Orchestrator
	loop  *mainloop.Loop
	store *storage.MemoryStore

	mu     sync.Mutex
	events []event.Event
}

func newHarness(t *testing.T, repo task.Executor, seed storage.Record, opts ...Option) *harness {
	t.Helper()

	loop := mainloop.New()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = loop.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-loop.Done()
	})

	h := &harness{loop: loop, store: storage.NewMemoryStore(seed)}
	bus := event.NewBus(nil)
	bus.SubscribeAll(func(e event.Event) {
		h.mu.Lock()
		h.events = append(h.events, e)
		h.mu.Unlock()
	})

	opts = append([]Option{WithEventBus(bus)}, opts...)
	h.orch = New(repo, h.store, loop, opts...)
	return h
}

// do runs fn on the loop and waits for it.
func (h *harness) do(t *testing.T, fn func()) {
	t.Helper()
	if err := h.loop.Do(context.Background(), fn); err != nil {
		t.Fatalf("loop.Do: %v", err)
	}
}

// fetchAndSettle starts a fetch on the loop and waits until its outcome has
// been applied.
func (h *harness) fetchAndSettle(t *testing.T) bool {
	t.Helper()
	var started bool
	h.do(t, func() { started = h.orch.FetchTask() })
	h.orch.Wait()
	h.do(t, func() {})
	return started
}

func (h *harness) eventTypes() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	types := make([]string, len(h.events))
	for i, e := range h.events {
		types[i] = e.EventType()
	}
	return types
}

func (h *harness) lastEvent() event.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.events) == 0 {
		return nil
	}
	return h.events[len(h.events)-1]
}

// blockingRepo holds ExecuteTask until release is closed.
type blockingRepo struct {
	release chan struct{}
	calls   atomic.Int32
	result  task.ResponseCodeResult
	err     error
}

func newBlockingRepo() *blockingRepo {
	return &blockingRepo{release: make(chan struct{})}
}

func (b *blockingRepo) ExecuteTask(context.Context) (task.ResponseCodeResult, error) {
	b.calls.Add(1)
	<-b.release
	return b.result, b.err
}

func strPtr(s string) *string { return &s }

func fixtureRepo() *task.HTTPRepository {
	return task.NewRepository(testutil.NewFixtureService(), "", nil)
}

func failingRepo() *task.HTTPRepository {
	return task.NewRepository(&testutil.FailingService{}, "", nil)
}

func TestNew_ZeroState(t *testing.T) {
	h := newHarness(t, fixtureRepo(), storage.Record{FetchCount: 9, ResponseCode: "x"})
	if got := h.orch.State(); got != (State{}) {
		t.Errorf("State() before load = %+v, want zero", got)
	}
}

func TestLoadStoredData(t *testing.T) {
	h := newHarness(t, fixtureRepo(), storage.Record{FetchCount: 4, ResponseCode: "stored"})

	h.do(t, h.orch.LoadStoredData)
	first := h.orch.State()
	h.do(t, h.orch.LoadStoredData)
	second := h.orch.State()

	want := State{FetchCount: 4, ResponseCode: "stored"}
	if first != want {
		t.Errorf("State() after load = %+v, want %+v", first, want)
	}
	if second != first {
		t.Errorf("LoadStoredData not idempotent: %+v then %+v", first, second)
	}
	if got := h.eventTypes(); len(got) != 2 || got[0] != event.TypeTaskLoaded {
		t.Errorf("events = %v, want two %s", got, event.TypeTaskLoaded)
	}
}

func TestLoadStoredData_LeavesErrorAndLoading(t *testing.T) {
	h := newHarness(t, failingRepo(), storage.Record{FetchCount: 1, ResponseCode: "a"})
	h.fetchAndSettle(t)

	h.do(t, h.orch.LoadStoredData)
	got := h.orch.State()
	if got.Error != testutil.FailMessage {
		t.Errorf("Error = %q, want %q kept across load", got.Error, testutil.FailMessage)
	}
	if got.Loading {
		t.Error("Loading should stay false")
	}
}

func TestLoadStoredData_ReadErrorUsesDefaults(t *testing.T) {
	h := newHarness(t, fixtureRepo(), storage.Record{FetchCount: 3, ResponseCode: "c"})
	h.store.ReadErr = errors.New("disk unavailable")

	h.do(t, func() { h.orch.UpdateData("before") })
	h.do(t, h.orch.LoadStoredData)

	if got := h.orch.State(); got.FetchCount != 0 || got.ResponseCode != "" {
		t.Errorf("State() = %+v, want defaults after read error", got)
	}
}

func TestFetchTask_Success(t *testing.T) {
	h := newHarness(t, fixtureRepo(), storage.Record{FetchCount: 2, ResponseCode: "old"})
	h.do(t, h.orch.LoadStoredData)

	if !h.fetchAndSettle(t) {
		t.Fatal("FetchTask() = false, want true")
	}

	want := State{FetchCount: 3, ResponseCode: testutil.FixtureResponseCode}
	if got := h.orch.State(); got != want {
		t.Errorf("State() = %+v, want %+v", got, want)
	}
	if rec := h.store.Record(); rec != (storage.Record{FetchCount: 3, ResponseCode: testutil.FixtureResponseCode}) {
		t.Errorf("stored record = %+v", rec)
	}

	wantEvents := []string{event.TypeTaskLoaded, event.TypeTaskFetchStarted, event.TypeTaskFetchSucceeded}
	if got := h.eventTypes(); strings.Join(got, ",") != strings.Join(wantEvents, ",") {
		t.Errorf("events = %v, want %v", got, wantEvents)
	}
	ok, isType := h.lastEvent().(event.TaskFetchSucceededEvent)
	if !isType || !ok.Persisted || ok.FetchCount != 3 {
		t.Errorf("last event = %+v", h.lastEvent())
	}
}

func TestFetchTask_SuccessIncrementsByExactlyOne(t *testing.T) {
	h := newHarness(t, fixtureRepo(), storage.Record{})

	for i := 1; i <= 3; i++ {
		h.fetchAndSettle(t)
		if got := h.orch.State().FetchCount; got != i {
			t.Fatalf("after fetch %d FetchCount = %d", i, got)
		}
	}
}

func TestFetchTask_AbsentResponseCode(t *testing.T) {
	repo := newBlockingRepo()
	repo.result = task.ResponseCodeResult{Path: strPtr("p")}
	close(repo.release)

	h := newHarness(t, repo, storage.Record{FetchCount: 1, ResponseCode: "old"})
	h.do(t, h.orch.LoadStoredData)
	h.fetchAndSettle(t)

	if got := h.orch.State(); got.ResponseCode != "" || got.FetchCount != 2 {
		t.Errorf("State() = %+v, want empty code and count 2", got)
	}
}

func TestFetchTask_ShouldFail(t *testing.T) {
	h := newHarness(t, failingRepo(), storage.Record{FetchCount: 2, ResponseCode: "old"})
	h.do(t, h.orch.LoadStoredData)

	h.fetchAndSettle(t)

	want := State{FetchCount: 2, ResponseCode: "old", Error: testutil.FailMessage}
	if got := h.orch.State(); got != want {
		t.Errorf("State() = %+v, want %+v", got, want)
	}
	if h.store.Writes() != 0 {
		t.Errorf("store writes = %d, want 0 on failure", h.store.Writes())
	}

	failed, ok := h.lastEvent().(event.TaskFetchFailedEvent)
	if !ok {
		t.Fatalf("last event = %T, want TaskFetchFailedEvent", h.lastEvent())
	}
	if failed.Kind != "generic" || failed.Message != testutil.FailMessage {
		t.Errorf("failed event = %+v", failed)
	}
}

func TestFetchTask_ErrorMessagesByKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"invalid url", errors.NewInvalidURL(nil), "Invalid URL. Unable to proceed with the request."},
		{"decoding", errors.NewDecodingError(nil), "Failed to decode the response. Data format might be incorrect."},
		{"status", errors.NewInvalidResponseCode(404), "Received invalid response code: 404."},
		{"offline", errors.NewNoInternetConnection(nil), "No internet connection. Please check your network settings."},
		{"timeout", errors.NewTimeout(nil), "Request timed out. The server took too long to respond."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newBlockingRepo()
			repo.err = tt.err
			close(repo.release)

			h := newHarness(t, repo, storage.Record{})
			h.fetchAndSettle(t)

			if got := h.orch.State().Error; got != tt.want {
				t.Errorf("Error = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFetchTask_ErrorClearedOnNextFetch(t *testing.T) {
	repo := newBlockingRepo()
	repo.err = errors.NewTimeout(nil)
	close(repo.release)

	h := newHarness(t, repo, storage.Record{})
	h.fetchAndSettle(t)
	if h.orch.State().Error == "" {
		t.Fatal("expected error after failed fetch")
	}

	repo.err = nil
	repo.result = task.ResponseCodeResult{ResponseCode: strPtr("fresh")}
	h.fetchAndSettle(t)

	want := State{FetchCount: 1, ResponseCode: "fresh"}
	if got := h.orch.State(); got != want {
		t.Errorf("State() = %+v, want %+v", got, want)
	}
}

func TestFetchTask_LoadingWhileInFlight(t *testing.T) {
	repo := newBlockingRepo()
	repo.result = task.ResponseCodeResult{ResponseCode: strPtr("rc")}

	h := newHarness(t, repo, storage.Record{})
	h.do(t, func() {
		h.orch.mu.Lock()
		h.orch.state.Error = "stale"
		h.orch.mu.Unlock()
	})

	h.do(t, func() { h.orch.FetchTask() })
	got := h.orch.State()
	if !got.Loading {
		t.Error("Loading should be true while the fetch is in flight")
	}
	if got.Error != "" {
		t.Errorf("Error = %q, want cleared on start", got.Error)
	}

	close(repo.release)
	h.orch.Wait()
	h.do(t, func() {})

	if h.orch.State().Loading {
		t.Error("Loading should be false once the outcome is applied")
	}
}

func TestFetchTask_CompletionNeverExposesPartialState(t *testing.T) {
	repo := newBlockingRepo()
	repo.result = task.ResponseCodeResult{ResponseCode: strPtr("rc")}

	h := newHarness(t, repo, storage.Record{FetchCount: 4, ResponseCode: "old"})
	h.do(t, func() { h.orch.LoadStoredData() })
	h.do(t, func() { h.orch.FetchTask() })

	stop := make(chan struct{})
	var torn atomic.Int32
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			s := h.orch.State()
			switch {
			case s.Loading && (s.FetchCount != 4 || s.ResponseCode != "old"):
				torn.Add(1)
			case !s.Loading && (s.FetchCount != 5 || s.ResponseCode != "rc"):
				torn.Add(1)
			}
		}
	}()

	close(repo.release)
	h.orch.Wait()
	h.do(t, func() {})
	close(stop)
	wg.Wait()

	if n := torn.Load(); n != 0 {
		t.Errorf("observed %d partially applied states", n)
	}
	got := h.orch.State()
	if got.Loading || got.FetchCount != 5 || got.ResponseCode != "rc" {
		t.Errorf("State() = %+v, want settled at count 5 with rc", got)
	}
}

func TestFetchTask_ReentrantCallIgnored(t *testing.T) {
	repo := newBlockingRepo()
	repo.result = task.ResponseCodeResult{ResponseCode: strPtr("once")}
	rec := metrics.NewRecorder()

	h := newHarness(t, repo, storage.Record{}, WithMetrics(rec))

	var first, second bool
	h.do(t, func() {
		first = h.orch.FetchTask()
		second = h.orch.FetchTask()
	})
	if !first || second {
		t.Fatalf("FetchTask() = %v then %v, want true then false", first, second)
	}

	close(repo.release)
	h.orch.Wait()
	h.do(t, func() {})

	if n := repo.calls.Load(); n != 1 {
		t.Errorf("ExecuteTask calls = %d, want 1", n)
	}
	if got := h.orch.State().FetchCount; got != 1 {
		t.Errorf("FetchCount = %d, want 1", got)
	}

	expected := `
# HELP taskfetch_tasks_total FetchTask invocations by outcome.
# TYPE taskfetch_tasks_total counter
taskfetch_tasks_total{outcome="ignored"} 1
taskfetch_tasks_total{outcome="success"} 1
`
	if err := promtestutil.GatherAndCompare(rec.Registry(), strings.NewReader(expected), "taskfetch_tasks_total"); err != nil {
		t.Error(err)
	}
}

func TestFetchTask_PersistFailureKeepsState(t *testing.T) {
	h := newHarness(t, fixtureRepo(), storage.Record{})
	h.store.WriteErr = errors.New("read-only filesystem")

	h.fetchAndSettle(t)

	want := State{FetchCount: 1, ResponseCode: testutil.FixtureResponseCode}
	if got := h.orch.State(); got != want {
		t.Errorf("State() = %+v, want %+v", got, want)
	}
	ok, isType := h.lastEvent().(event.TaskFetchSucceededEvent)
	if !isType || ok.Persisted {
		t.Errorf("last event = %+v, want succeeded with Persisted=false", h.lastEvent())
	}
}

func TestFetchTask_OverHTTP(t *testing.T) {
	srv := testutil.NewTaskServer(t, testutil.FixtureResponseCode)
	srv.FailNext("/nextpath", 1)

	store, err := storage.NewFileStore(filepath.Join(t.TempDir(), storage.StateFileName))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	loop := mainloop.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = loop.Run(ctx) }()

	repo := task.NewRepository(network.NewClient(), srv.Root(), nil)
	orch := New(repo, store, loop)

	_ = loop.Do(ctx, func() { orch.FetchTask() })
	orch.Wait()
	_ = loop.Do(ctx, func() {})

	want := State{FetchCount: 1, ResponseCode: testutil.FixtureResponseCode}
	if got := orch.State(); got != want {
		t.Errorf("State() = %+v, want %+v", got, want)
	}
	rec, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.FetchCount != 1 || rec.ResponseCode != testutil.FixtureResponseCode {
		t.Errorf("stored record = %+v", rec)
	}
}

func TestUpdateDataAndIncrement(t *testing.T) {
	h := newHarness(t, fixtureRepo(), storage.Record{})

	h.do(t, func() {
		h.orch.UpdateData("abc")
		h.orch.IncrementFetchCount()
	})

	want := State{FetchCount: 2, ResponseCode: "abc"}
	if got := h.orch.State(); got != want {
		t.Errorf("State() = %+v, want %+v", got, want)
	}
	if h.store.Writes() != 0 {
		t.Error("UpdateData must not persist")
	}
}

func TestDispatcherFunc(t *testing.T) {
	ran := false
	DispatcherFunc(func(fn func()) { fn() }).Dispatch(func() { ran = true })
	if !ran {
		t.Error("DispatcherFunc should invoke the function")
	}
}
