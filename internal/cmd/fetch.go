package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Iron-Ham/taskfetch/internal/event"
	"github.com/Iron-Ham/taskfetch/internal/mainloop"
	"github.com/Iron-Ham/taskfetch/internal/orchestrator"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Run a single fetch and print the result",
	Long: `Run one fetch without the interactive screen.

The stored counter is loaded, the next path and its response code are
requested, and the updated state is printed. The command exits non-zero
if the fetch fails.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := mainloop.New()
	orch := orchestrator.New(rt.repo, rt.store, loop,
		orchestrator.WithEventBus(rt.bus),
		orchestrator.WithLogger(rt.logger),
		orchestrator.WithMetrics(rt.metrics),
		orchestrator.WithContext(ctx),
	)

	var failure *event.TaskFetchFailedEvent
	rt.bus.Subscribe(event.TypeTaskFetchSucceeded, func(event.Event) {
		cancel()
	})
	rt.bus.Subscribe(event.TypeTaskFetchFailed, func(e event.Event) {
		if f, ok := e.(event.TaskFetchFailedEvent); ok {
			failure = &f
		}
		cancel()
	})

	loop.Dispatch(func() {
		orch.LoadStoredData()
		orch.FetchTask()
	})
	_ = loop.Run(ctx)
	orch.Wait()

	state := orch.State()
	printState(cmd.OutOrStdout(), state)

	switch {
	case failure != nil:
		return fmt.Errorf("fetch failed (%s): %s", failure.Kind, failure.Message)
	case state.Loading:
		return fmt.Errorf("fetch interrupted")
	}
	return nil
}

func printState(w io.Writer, state orchestrator.State) {
	fmt.Fprintf(w, "ResponseCode: %s\n", state.ResponseCode)
	fmt.Fprintf(w, "Times Fetched: %d\n", state.FetchCount)
	if state.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", state.Error)
	}
}
