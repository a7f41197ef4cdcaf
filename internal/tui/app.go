// Package tui renders the fetch pipeline as a Bubble Tea program.
//
// The program's update loop is the designated execution context: the
// orchestrator hands results back through a Dispatcher, which turns each
// function into a message that Update runs.
package tui

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Iron-Ham/taskfetch/internal/tui/styles"
	tea "github.com/charmbracelet/bubbletea"
)

// App wraps the Bubbletea program
type App struct {
	mu         sync.Mutex
	program    *tea.Program
	model      Model
	dispatcher *Dispatcher
	opts       []tea.ProgramOption
}

// New creates a new TUI application. The dispatcher must be the one the
// controller was constructed with.
func New(ctrl Controller, dispatcher *Dispatcher, theme styles.ThemeName, opts ...tea.ProgramOption) *App {
	return &App{
		model:      NewModel(ctrl, theme),
		dispatcher: dispatcher,
		opts:       opts,
	}
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	opts := append([]tea.ProgramOption{tea.WithAltScreen()}, a.opts...)
	program := tea.NewProgram(a.model, opts...)

	a.mu.Lock()
	a.program = program
	a.mu.Unlock()
	a.dispatcher.Attach(program.Send)

	// Quit cleanly on termination so the terminal is restored
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		if _, ok := <-sigChan; ok {
			program.Send(tea.Quit())
		}
	}()

	_, err := program.Run()

	signal.Stop(sigChan)
	close(sigChan)

	return err
}

// SetTheme switches the running program to the named theme. It is a no-op
// before Run.
func (a *App) SetTheme(name string) {
	a.mu.Lock()
	program := a.program
	a.mu.Unlock()

	if program == nil {
		return
	}
	program.Send(themeMsg{theme: styles.ThemeName(name)})
}
