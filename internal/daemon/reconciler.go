package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/zonetile/internal/engine"
)

// WindowLister is a function that returns the ids of windows currently
// alive on the compositor.
type WindowLister func() ([]string, error)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically checks for tracked windows that no longer
// exist and drops them from the engine.
type Reconciler struct {
	interval    time.Duration
	eng         *engine.Engine
	listWindows WindowLister
	logger      *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, eng *engine.Engine, listWindows WindowLister) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		interval:    interval,
		eng:         eng,
		listWindows: listWindows,
		logger:      logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	tracked := r.eng.TrackedWindowIDs()
	if len(tracked) == 0 {
		return
	}

	actual, err := r.listWindows()
	if err != nil {
		r.logger.Error("reconciler: failed to list windows", "error", err)
		return
	}

	alive := make(map[string]bool, len(actual))
	for _, id := range actual {
		alive[id] = true
	}

	for _, id := range tracked {
		if !alive[id] {
			r.logger.Info("reconciler: tracked window gone", "window_id", id)
			r.eng.WindowClosed(id)
		}
	}
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}
