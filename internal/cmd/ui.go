package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Iron-Ham/taskfetch/internal/logging"
	"github.com/Iron-Ham/taskfetch/internal/metrics"
	"github.com/Iron-Ham/taskfetch/internal/orchestrator"
	"github.com/Iron-Ham/taskfetch/internal/tui"
	"github.com/Iron-Ham/taskfetch/internal/tui/styles"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var uiMetricsAddr string

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive fetch screen",
	Long: `Open the interactive fetch screen.

Press f, enter or space to fetch, q to quit. The color theme follows
tui.theme and is reloaded when the config file changes.`,
	Args: cobra.NoArgs,
	RunE: runUI,
}

func init() {
	rootCmd.AddCommand(uiCmd)

	uiCmd.Flags().StringVar(&uiMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
}

func runUI(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("taskfetch ui needs a terminal; use 'taskfetch fetch' instead")
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if uiMetricsAddr != "" {
		srv := serveMetrics(uiMetricsAddr, rt.metrics, rt.logger)
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	dispatcher := tui.NewDispatcher()
	orch := orchestrator.New(rt.repo, rt.store, dispatcher,
		orchestrator.WithEventBus(rt.bus),
		orchestrator.WithLogger(rt.logger),
		orchestrator.WithMetrics(rt.metrics),
		orchestrator.WithContext(ctx),
	)
	app := tui.New(orch, dispatcher, styles.ThemeName(rt.cfg.TUI.Theme))

	if viper.ConfigFileUsed() != "" {
		viper.OnConfigChange(func(e fsnotify.Event) {
			theme := viper.GetString("tui.theme")
			rt.logger.Info("config file changed", "file", e.Name, "op", e.Op.String(), "theme", theme)
			if styles.IsValidTheme(theme) {
				app.SetTheme(theme)
			}
		})
		viper.WatchConfig()
	}

	runErr := app.Run()

	// Abort any fetch still in flight; its result is dropped.
	cancel()
	orch.Wait()

	if runErr != nil {
		return fmt.Errorf("TUI error: %w", runErr)
	}
	return nil
}

func serveMetrics(addr string, rec *metrics.Recorder, logger *logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err.Error())
		}
	}()

	return srv
}
