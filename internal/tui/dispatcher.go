package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// dispatchMsg carries a function to run inside Update.
type dispatchMsg struct {
	fn func()
}

// Dispatcher delivers functions to the Bubble Tea update loop. Functions
// dispatched before Attach are held and sent, in order, once a program is
// attached.
type Dispatcher struct {
	mu      sync.Mutex
	send    func(tea.Msg)
	pending []func()
}

// NewDispatcher creates a detached Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Attach routes dispatched functions through send, usually
// (*tea.Program).Send, and flushes anything queued so far.
func (d *Dispatcher) Attach(send func(tea.Msg)) {
	d.mu.Lock()
	d.send = send
	pending := d.pending
	d.pending = nil
	d.mu.Unlock()

	for _, fn := range pending {
		send(dispatchMsg{fn: fn})
	}
}

// Dispatch implements orchestrator.Dispatcher.
func (d *Dispatcher) Dispatch(fn func()) {
	d.mu.Lock()
	send := d.send
	if send == nil {
		d.pending = append(d.pending, fn)
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	send(dispatchMsg{fn: fn})
}
