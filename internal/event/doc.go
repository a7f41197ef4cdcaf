// Package event provides a pub-sub event bus that lets the presentation
// layer, the CLI and logging observe task state transitions without
// depending on the orchestrator directly.
//
// # Main Types
//
//   - [Event]: Interface that all events implement, providing EventType() and Timestamp()
//   - [Bus]: Synchronous pub-sub dispatcher, safe for concurrent use
//   - [Handler]: Function type for event handlers (func(Event))
//
// # Task Events
//
//   - [TaskLoadedEvent] ("task.loaded"): stored data was read into state
//   - [TaskFetchStartedEvent] ("task.fetch_started"): a fetch began loading
//   - [TaskFetchSucceededEvent] ("task.fetch_succeeded"): a result was applied
//   - [TaskFetchFailedEvent] ("task.fetch_failed"): an error was applied
//
// # Basic Usage
//
//	bus := event.NewBus(logger)
//
//	bus.Subscribe(event.TypeTaskFetchSucceeded, func(e event.Event) {
//	    ok := e.(event.TaskFetchSucceededEvent)
//	    fmt.Println(ok.ResponseCode)
//	})
//
//	bus.SubscribeAll(func(e event.Event) {
//	    logger.Debug("event", "type", e.EventType())
//	})
//
// Handlers run synchronously on the publishing goroutine. A panicking
// handler is logged and does not prevent delivery to the others.
package event
