// Package orchestrator holds the task fetch state and drives its
// transitions.
//
// The [Orchestrator] is the single writer of [State]. Network work runs on a
// worker goroutine; the outcome is handed to a [Dispatcher] so that it is
// applied on the designated execution context (the Bubble Tea update loop in
// the TUI, a mainloop.Loop in the headless CLI and tests).
//
// Each FetchTask call moves through
//
//	Idle -> Loading -> {Success, Failure} -> Idle
//
// and a call made while Loading is ignored.
package orchestrator
