package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/arvimal/daisho/internal/config"
	"github.com/arvimal/daisho/internal/interp"
	"github.com/arvimal/daisho/internal/logger"
	"github.com/arvimal/daisho/internal/storage"
	"github.com/arvimal/daisho/internal/store"
	"go.uber.org/zap"
)

// app holds what every command needs: config, logger and the open store.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *store.Store
	logFile io.Closer
}

// openApp opens the log file and the configured backend. The caller must
// Close the result.
func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	base, logFile, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
		Path:     cfg.LogPath(),
	})
	if err != nil {
		return nil, err
	}
	log := logger.WithSessionID(ctx, base)

	backend, err := storage.Open(cfg.Backend, cfg.StorePath())
	if err != nil {
		log.Error("opening store failed", zap.String("backend", cfg.Backend), zap.Error(err))
		_ = log.Sync()
		logFile.Close()
		return nil, err
	}
	log.Debug("store opened", zap.String("backend", cfg.Backend), zap.String("path", cfg.StorePath()))

	st := store.New(backend, store.WithLogger(log))
	if _, err := st.PurgeDeleted(); err != nil {
		log.Warn("purging deleted records failed", zap.Error(err))
	}

	return &app{
		cfg:     cfg,
		logger:  log,
		store:   st,
		logFile: logFile,
	}, nil
}

// mustOpenApp opens the app, exits on error.
func mustOpenApp(ctx context.Context, cfg *config.Config) *app {
	a, err := openApp(ctx, cfg)
	if err != nil {
		exitWithError(exitCodeFor(err), "opening store: %v", err)
	}
	return a
}

func (a *app) interpreter(out io.Writer, p interp.Prompter) *interp.Interpreter {
	return interp.New(a.store, out, p, interp.WithLogger(a.logger))
}

func (a *app) Close() error {
	err := a.store.Close()
	_ = a.logger.Sync()
	return errors.Join(err, a.logFile.Close())
}

// sessionContext tags the command's context with a fresh session id.
func sessionContext(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return logger.ContextWithSessionID(ctx, logger.NewSessionID())
}

// exitCodeFor maps an error to the process exit code.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, store.ErrConnection):
		return ExitConnectionError
	case errors.Is(err, config.ErrNotInitialized),
		errors.Is(err, config.ErrAlreadyInitialized),
		errors.Is(err, config.ErrUnknownKey),
		errors.Is(err, os.ErrPermission):
		return ExitConfigError
	}
	return ExitError
}

// describeBackend is used by init and config output.
func describeBackend(cfg *config.Config) string {
	return fmt.Sprintf("%s (%s)", cfg.Backend, cfg.StorePath())
}
