package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/florandr/trialflow/internal/logging"
	"github.com/florandr/trialflow/pkg/adapters/memory"
	redisadapter "github.com/florandr/trialflow/pkg/adapters/redis"
	"github.com/florandr/trialflow/pkg/domain"
	"github.com/florandr/trialflow/pkg/observability"
	"github.com/florandr/trialflow/pkg/plugins/callfunc"
	"github.com/florandr/trialflow/pkg/plugins/htmlkeyboard"
	"github.com/florandr/trialflow/pkg/plugins/instructions"
	"github.com/florandr/trialflow/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows
// retrieving the signal afterwards.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger.
// In debug mode, it writes to Stderr (to separate from Stdout flow UI).
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

// BuiltinPlugins returns the plugins bundled with the CLI.
func BuiltinPlugins() []ports.Plugin {
	return []ports.Plugin{
		htmlkeyboard.New(),
		callfunc.New(),
		instructions.New(),
	}
}

// setupStore builds the persistence adapter selected on the command line.
// Supported kinds: "", "none", "memory", "redis".
func setupStore(kind, redisAddr string) (ports.DataStore, error) {
	switch kind {
	case "", "none":
		return nil, nil
	case "memory":
		return memory.NewStore(), nil
	case "redis":
		return redisadapter.New(redisAddr, "", 0), nil
	default:
		return nil, fmt.Errorf("unknown store %q (expected memory or redis)", kind)
	}
}

// serveMetrics exposes Prometheus metrics and returns the hooks recording
// them. The listener runs for the life of the process.
func serveMetrics(addr string, logger *slog.Logger) domain.LifecycleHooks {
	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		logger.Info("metrics server listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("metrics server stopped", "err", err)
		}
	}()
	return metrics.Hooks()
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTrialStart: func(ctx context.Context, e *domain.TrialEvent) {
			logger.Debug("Trial Start", "run_id", e.RunID, "index", e.Index, "plugin", e.Plugin)
		},
		OnPhaseChange: func(ctx context.Context, e *domain.TrialEvent) {
			logger.Debug("Phase Change", "index", e.Index, "phase", e.Phase)
		},
		OnTrialFinish: func(ctx context.Context, e *domain.TrialEvent) {
			logger.Debug("Trial Finish", "index", e.Index, "elapsed", e.Elapsed)
		},
		OnTrialAbort: func(ctx context.Context, e *domain.TrialEvent) {
			logger.Debug("Trial Abort", "index", e.Index, "phase", e.Phase, "err", e.Err)
		},
	}
}

// mergeHooks fans one event out to multiple hook sets (debug + metrics).
func mergeHooks(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTrialStart: func(ctx context.Context, e *domain.TrialEvent) {
			for _, h := range sets {
				if h.OnTrialStart != nil {
					h.OnTrialStart(ctx, e)
				}
			}
		},
		OnPhaseChange: func(ctx context.Context, e *domain.TrialEvent) {
			for _, h := range sets {
				if h.OnPhaseChange != nil {
					h.OnPhaseChange(ctx, e)
				}
			}
		},
		OnTrialFinish: func(ctx context.Context, e *domain.TrialEvent) {
			for _, h := range sets {
				if h.OnTrialFinish != nil {
					h.OnTrialFinish(ctx, e)
				}
			}
		},
		OnTrialAbort: func(ctx context.Context, e *domain.TrialEvent) {
			for _, h := range sets {
				if h.OnTrialAbort != nil {
					h.OnTrialAbort(ctx, e)
				}
			}
		},
	}
}

func isInterrupted(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, io.EOF) ||
		err.Error() == "interrupted"
}

// handleExecutionError maps interruptions to a clean exit.
func handleExecutionError(err error) error {
	if err == nil {
		return nil
	}
	if isInterrupted(err) {
		return nil
	}
	return err
}
