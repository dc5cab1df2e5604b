package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/thicket"
	"github.com/aretw0/thicket/internal/presentation/tui"
	"github.com/aretw0/thicket/pkg/domain"
	"github.com/aretw0/thicket/pkg/runner"
	"github.com/aretw0/thicket/pkg/session"
	"github.com/muesli/termenv"
)

// RunSession executes a single interactive session on stdio.
func RunSession(opts RunOptions) error {
	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	err := runSession(sigCtx, opts, os.Stdin, os.Stdout, CreateLogger(opts.Debug))

	quiet := opts.JSON || opts.Headless
	if err == nil || isInterrupted(err) {
		logCompletion(os.Stdout, opts.Path, quiet, sigCtx.Signal())
	}
	return handleExecutionError(err)
}

func runSession(ctx context.Context, opts RunOptions, in io.Reader, out io.Writer, logger *slog.Logger) error {
	quiet := opts.JSON || opts.Headless

	engine, err := CreateEngine(ctx, opts.EngineOptions, logger)
	if err != nil {
		return err
	}

	sessions, closeStore, err := setupPersistence(ctx, opts, logger, out)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("Failed to close transcript store", "err", err)
		}
	}()

	if !quiet {
		tui.PrintBanner(out)
		printSummary(out, engine)
	}

	handler := newHandler(opts, in, out)
	if c, ok := handler.(io.Closer); ok {
		defer c.Close()
	}

	r := runner.NewRunner(createRunnerOptions(engine, sessions, opts, handler, logger)...)
	return r.Run(ctx)
}

// setupPersistence opens the transcript store when a session is requested.
func setupPersistence(ctx context.Context, opts RunOptions, logger *slog.Logger, out io.Writer) (*session.Manager, func() error, error) {
	if opts.SessionID == "" {
		return nil, func() error { return nil }, nil
	}

	storeOpts := opts.Store
	if storeOpts.Kind == "" {
		storeOpts.Kind = StoreFile
	}
	mgr, closer, err := OpenSessions(storeOpts, logger)
	if err != nil {
		return nil, closer, err
	}

	logSessionStatus(ctx, mgr, opts.SessionID, logger, out, opts.JSON || opts.Headless)
	return mgr, closer, nil
}

func logSessionStatus(ctx context.Context, mgr *session.Manager, sessionID string, logger *slog.Logger, out io.Writer, quiet bool) {
	transcript, err := mgr.Load(ctx, sessionID)
	switch {
	case err == nil:
		logger.Info("Session Resumed", "session_id", sessionID, "queries", len(transcript.Queries))
		if !quiet {
			printSystemMessage(out, "Resuming session '%s' (%d queries, %d accepted).", sessionID, len(transcript.Queries), transcript.Accepted())
		}
	case errors.Is(err, domain.ErrSessionNotFound):
		logger.Info("Session Created", "session_id", sessionID)
		if !quiet {
			printSystemMessage(out, "Session '%s' active.", sessionID)
		}
	default:
		logger.Warn("Failed to read session", "session_id", sessionID, "err", err)
	}
}

// createRunnerOptions prepares the functional options for the Runner.
func createRunnerOptions(engine *thicket.Engine, sessions *session.Manager, opts RunOptions, handler runner.IOHandler, logger *slog.Logger) []runner.Option {
	runnerOpts := []runner.Option{
		runner.WithEngine(engine),
		runner.WithInputHandler(handler),
		runner.WithLogger(logger),
		runner.WithTrace(opts.Trace),
	}

	if sessions != nil {
		runnerOpts = append(runnerOpts,
			runner.WithSessions(sessions),
			runner.WithSessionID(opts.SessionID),
		)
	}
	return runnerOpts
}

// newHandler picks the IO strategy for the requested mode.
func newHandler(opts RunOptions, in io.Reader, out io.Writer) runner.IOHandler {
	switch {
	case opts.JSON:
		return runner.NewJSONHandler(in, out)
	case opts.Headless:
		return runner.NewTextHandler(in, out, runner.WithPrompt(""))
	default:
		return newInteractiveHandler(in, out)
	}
}

func newInteractiveHandler(in io.Reader, out io.Writer) *runner.TextHandler {
	profile := termenv.Ascii
	if f, ok := out.(*os.File); ok && f == os.Stdout {
		profile = termenv.ColorProfile()
	}
	return runner.NewTextHandler(in, out, runner.WithVerdictRenderer(tui.VerdictRenderer(profile)))
}

func printSummary(out io.Writer, engine *thicket.Engine) {
	summary := tui.Summary(engine.Definition())
	rendered, err := tui.NewRenderer()(summary)
	if err != nil {
		rendered = summary
	}
	fmt.Fprint(out, rendered)
}
