package orchestrator

import (
	"context"
	"sync"

	"github.com/Iron-Ham/taskfetch/internal/errors"
	"github.com/Iron-Ham/taskfetch/internal/event"
	"github.com/Iron-Ham/taskfetch/internal/logging"
	"github.com/Iron-Ham/taskfetch/internal/metrics"
	"github.com/Iron-Ham/taskfetch/internal/storage"
	"github.com/Iron-Ham/taskfetch/internal/task"
)

// State is the presentation-facing snapshot of the fetch pipeline.
type State struct {
	FetchCount   int
	ResponseCode string
	Error        string
	Loading      bool
}

// Dispatcher runs functions on the designated execution context, the one
// goroutine allowed to mutate orchestrator state.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(fn func())

// Dispatch calls f(fn).
func (f DispatcherFunc) Dispatch(fn func()) { f(fn) }

// Orchestrator owns TaskState and is its only writer.
//
// LoadStoredData, FetchTask, UpdateData and IncrementFetchCount must be
// called on the designated context. State may be called from anywhere.
type Orchestrator struct {
	repo       task.Executor
	store      storage.Port
	dispatcher Dispatcher
	bus        *event.Bus
	logger     *logging.Logger
	metrics    *metrics.Recorder
	ctx        context.Context

	mu    sync.RWMutex
	state State

	inflight sync.WaitGroup
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithEventBus publishes every state transition on bus.
func WithEventBus(bus *event.Bus) Option {
	return func(o *Orchestrator) {
		o.bus = bus
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics counts FetchTask outcomes on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(o *Orchestrator) {
		o.metrics = r
	}
}

// WithContext sets the context passed to the repository by fetch workers.
// Cancelling it aborts in-flight requests.
func WithContext(ctx context.Context) Option {
	return func(o *Orchestrator) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// New creates an Orchestrator with zero state. Call LoadStoredData to
// restore the persisted counter and response code.
func New(repo task.Executor, store storage.Port, dispatcher Dispatcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		repo:       repo,
		store:      store,
		dispatcher: dispatcher,
		logger:     logging.NopLogger(),
		ctx:        context.Background(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.WithComponent("orchestrator")
	return o
}

// State returns a snapshot of the current state.
func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// LoadStoredData replaces FetchCount and ResponseCode with the persisted
// values. Error and Loading are left alone. A failed read falls back to the
// port defaults (0 and "") for that value.
func (o *Orchestrator) LoadStoredData() {
	count, err := o.store.FetchCount()
	if err != nil {
		o.logger.Warn("failed to read stored fetch count", "error", err.Error())
		count = 0
	}
	code, err := o.store.ResponseCode()
	if err != nil {
		o.logger.Warn("failed to read stored response code", "error", err.Error())
		code = ""
	}

	o.mu.Lock()
	o.state.FetchCount = count
	o.state.ResponseCode = code
	o.mu.Unlock()

	o.logger.Debug("loaded stored data", "fetch_count", count, "response_code", code)
	o.publish(event.NewTaskLoadedEvent(count, code))
}

// FetchTask starts one fetch of the task chain. It returns false without
// doing anything when a fetch is already loading.
//
// The chain runs on a worker goroutine; its outcome is applied through the
// Dispatcher. On success the response code is replaced, FetchCount grows by
// one and both are persisted. On failure only Error changes.
func (o *Orchestrator) FetchTask() bool {
	o.mu.Lock()
	if o.state.Loading {
		o.mu.Unlock()
		o.logger.Debug("fetch ignored, already loading")
		o.metrics.Task(metrics.OutcomeIgnored)
		return false
	}
	o.state.Loading = true
	o.state.Error = ""
	o.mu.Unlock()

	o.logger.Info("fetch started")
	o.publish(event.NewTaskFetchStartedEvent())

	o.inflight.Add(1)
	go func() {
		defer o.inflight.Done()
		result, err := o.repo.ExecuteTask(o.ctx)
		o.dispatcher.Dispatch(func() {
			o.complete(result, err)
		})
	}()
	return true
}

// Wait blocks until every started fetch has handed its outcome to the
// Dispatcher. The outcome is applied once the dispatcher runs it.
func (o *Orchestrator) Wait() {
	o.inflight.Wait()
}

// UpdateData sets the response code and increments the fetch counter.
func (o *Orchestrator) UpdateData(code string) {
	o.mu.Lock()
	o.updateDataLocked(code)
	o.mu.Unlock()
}

func (o *Orchestrator) updateDataLocked(code string) {
	o.state.ResponseCode = code
	o.state.FetchCount++
}

// IncrementFetchCount adds one to the fetch counter.
func (o *Orchestrator) IncrementFetchCount() {
	o.mu.Lock()
	o.state.FetchCount++
	o.mu.Unlock()
}

func (o *Orchestrator) complete(result task.ResponseCodeResult, err error) {
	if err != nil {
		o.fail(err)
		return
	}

	// Readers must never see loading cleared with the previous count.
	o.mu.Lock()
	o.state.Loading = false
	o.updateDataLocked(result.Code())
	snap := o.state
	o.mu.Unlock()

	persisted := true
	if werr := o.store.StoreData(snap.FetchCount, snap.ResponseCode); werr != nil {
		persisted = false
		o.logger.Error("failed to persist fetch result", "error", werr.Error())
	}

	o.logger.Info("fetch succeeded",
		"fetch_count", snap.FetchCount,
		"response_code", snap.ResponseCode,
		"persisted", persisted)
	o.metrics.Task(metrics.OutcomeSuccess)
	o.publish(event.NewTaskFetchSucceededEvent(snap.FetchCount, snap.ResponseCode, persisted))
}

func (o *Orchestrator) fail(err error) {
	msg := errors.UserMessage(err)
	kind := errors.KindGeneric
	if k, ok := errors.KindOf(err); ok {
		kind = k
	}

	o.mu.Lock()
	o.state.Loading = false
	o.state.Error = msg
	o.mu.Unlock()

	if errors.GetSeverity(err) == errors.SeverityWarning {
		o.logger.Warn("fetch failed", "kind", kind.String(), "error", err.Error())
	} else {
		o.logger.Error("fetch failed", "kind", kind.String(), "error", err.Error())
	}
	o.metrics.Task(metrics.OutcomeFailure)
	o.publish(event.NewTaskFetchFailedEvent(kind.String(), msg))
}

func (o *Orchestrator) publish(e event.Event) {
	if o.bus != nil {
		o.bus.Publish(e)
	}
}
