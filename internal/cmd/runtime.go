package cmd

import (
	"fmt"

	"github.com/Iron-Ham/taskfetch/internal/config"
	"github.com/Iron-Ham/taskfetch/internal/event"
	"github.com/Iron-Ham/taskfetch/internal/logging"
	"github.com/Iron-Ham/taskfetch/internal/metrics"
	"github.com/Iron-Ham/taskfetch/internal/network"
	"github.com/Iron-Ham/taskfetch/internal/storage"
	"github.com/Iron-Ham/taskfetch/internal/task"
)

// runtime holds the components shared by the commands that fetch.
type runtime struct {
	cfg     *config.Config
	logger  *logging.Logger
	metrics *metrics.Recorder
	bus     *event.Bus
	store   *storage.FileStore
	repo    *task.HTTPRepository
}

func newRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewFileStore(cfg.Storage.ResolvePath())
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("failed to open state file: %w", err)
	}

	recorder := metrics.NewRecorder()
	client := network.NewClient(
		network.WithTimeout(cfg.Network.Timeout()),
		network.WithRateLimit(cfg.Network.RequestsPerSecond),
		network.WithLogger(logger),
		network.WithMetrics(recorder),
	)

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		metrics: recorder,
		bus:     event.NewBus(logger),
		store:   store,
		repo:    task.NewRepository(client, cfg.API.RootURL, logger),
	}, nil
}

func (r *runtime) Close() {
	_ = r.logger.Close()
}

// newLogger writes to {data dir}/debug.log, or discards when logging is off.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}

	rotation := logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	}
	logger, err := logging.NewLogger(config.DataDir(), logging.ParseLevel(cfg.Logging.Level), rotation, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// openStore opens the configured state file without the network stack.
func openStore() (*storage.FileStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	store, err := storage.NewFileStore(cfg.Storage.ResolvePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open state file: %w", err)
	}
	return store, nil
}
