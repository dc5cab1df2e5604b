package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/thicket/internal/presentation/tui"
	"github.com/aretw0/thicket/pkg/runner"
	"github.com/aretw0/thicket/pkg/session"
	"github.com/fsnotify/fsnotify"
)

// watchDebounce is the quiet period after the last event before a change
// is reported, so a burst of writes triggers a single reload.
var watchDebounce = 100 * time.Millisecond

// RunWatch executes Thicket in development mode, reloading the automaton
// whenever its file changes. The session, if any, survives reloads.
func RunWatch(opts RunOptions) error {
	logger := CreateLogger(opts.Debug)
	tui.PrintBanner(os.Stdout)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	logger.Info("Starting Watcher", "path", opts.Path, "session_id", opts.SessionID)

	// One handler for every iteration so a single stdin pump is shared.
	handler := newInteractiveHandler(os.Stdin, os.Stdout)
	defer handler.Close()
	err := runWatch(sigCtx, opts, handler, os.Stdout, logger)

	if err == nil || isInterrupted(err) {
		logCompletion(os.Stdout, opts.Path, false, sigCtx.Signal())
	}
	return handleExecutionError(err)
}

func runWatch(ctx context.Context, opts RunOptions, handler runner.IOHandler, out io.Writer, logger *slog.Logger) error {
	sessions, closeStore, err := setupPersistence(ctx, opts, logger, out)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("Failed to close transcript store", "err", err)
		}
	}()

	printSystemMessage(out, "Watching '%s'.", opts.Path)
	for {
		reload, err := runWatchIteration(ctx, opts, sessions, handler, out, logger)
		if err != nil || !reload {
			return err
		}
		logger.Info("Watcher restarting")
	}
}

// runWatchIteration loads the automaton and runs the loop until the file
// changes (reload=true), the user leaves, or ctx is done.
func runWatchIteration(ctx context.Context, opts RunOptions, sessions *session.Manager, handler runner.IOHandler, out io.Writer, logger *slog.Logger) (bool, error) {
	iterCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	changed, err := watchFile(iterCtx, opts.Path, logger)
	if err != nil {
		return false, err
	}

	engine, err := CreateEngine(ctx, opts.EngineOptions, logger)
	if err != nil {
		logger.Error("Engine initialization failed", "err", err)
		printSystemMessage(out, "%v", err)
		printSystemMessage(out, "Waiting for changes...")
		select {
		case <-ctx.Done():
			return false, nil
		case <-changed:
			return true, nil
		}
	}
	printSummary(out, engine)

	r := runner.NewRunner(createRunnerOptions(engine, sessions, opts, handler, logger)...)

	done := make(chan error, 1)
	go func() {
		done <- r.Run(iterCtx)
	}()

	select {
	case <-changed:
		cancel()
		<-done
		printSystemMessage(out, "Change detected in '%s'.", opts.Path)
		return true, nil
	case err := <-done:
		return false, err
	}
}

// watchFile closes the returned channel once path is written, created or
// replaced. The parent directory is watched so editors that save through a
// rename are noticed too.
func watchFile(ctx context.Context, path string, logger *slog.Logger) (<-chan struct{}, error) {
	target, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	changed := make(chan struct{})
	go func() {
		defer watcher.Close()

		var settle <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					logger.Debug("Watcher event", "path", event.Name, "op", event.Op.String())
					settle = time.After(watchDebounce)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Watcher error", "err", err)
			case <-settle:
				logger.Debug("Change detected", "path", path)
				close(changed)
				return
			}
		}
	}()
	return changed, nil
}
