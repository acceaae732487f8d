package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/zonetile/internal/config"
	"github.com/1broseidon/zonetile/internal/drag"
	"github.com/1broseidon/zonetile/internal/engine"
	"github.com/1broseidon/zonetile/internal/platform"
)

// Config holds the daemon loop settings.
type Config struct {
	// ConfigPath is re-read on reload requests. Empty means the
	// default path.
	ConfigPath   string
	PollInterval time.Duration
	Events       drag.Events
	Logger       *slog.Logger
}

// Daemon drives the drag state machine off pointer polling and applies
// configuration reloads. It owns the main loop of the process.
type Daemon struct {
	eng        *engine.Engine
	comp       platform.Compositor
	configPath string
	poll       time.Duration
	events     drag.Events
	logger     *slog.Logger
	reload     <-chan struct{}

	buttonDown bool
	dragging   bool
	dragScreen string
}

// New creates a daemon. reload delivers config reload requests, usually
// fed by the IPC server.
func New(cfg Config, eng *engine.Engine, comp platform.Compositor, reload <-chan struct{}) *Daemon {
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = time.Duration(config.DefaultPollIntervalMS) * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Daemon{
		eng:        eng,
		comp:       comp,
		configPath: cfg.ConfigPath,
		poll:       poll,
		events:     cfg.Events,
		logger:     logger,
		reload:     reload,
	}
}

// Run starts the poll loop. Blocks until the context is cancelled.
func (d *Daemon) Run(ctx context.Context) {
	ticker := time.NewTicker(d.poll)
	defer ticker.Stop()

	d.logger.Info("daemon started", "poll_interval", d.poll)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("daemon stopped")
			return
		case <-d.reload:
			d.applyReload()
		case <-ticker.C:
			d.pollOnce()
		}
	}
}

// pollOnce samples the pointer and advances the drag state machine.
func (d *Daemon) pollOnce() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			d.logger.Error("poll panic recovered", "error", err)
		}
	}()

	ptr, err := d.comp.Pointer()
	if err != nil {
		d.logger.Debug("pointer query failed", "error", err)
		return
	}

	switch {
	case ptr.ButtonDown && !d.buttonDown:
		d.beginDrag()
	case ptr.ButtonDown && d.dragging:
		if err := d.eng.UpdateDrag(d.dragScreen, ptr.Pos); err != nil {
			d.logger.Debug("drag update failed", "screen", d.dragScreen, "error", err)
		}
		d.eng.SetSpanning(d.dragScreen, ptr.SpanModifier)
	case !ptr.ButtonDown && d.dragging:
		d.endDrag()
	}
	d.buttonDown = ptr.ButtonDown
}

func (d *Daemon) beginDrag() {
	win, err := d.comp.ActiveWindow()
	if err != nil || win == "" {
		return
	}
	ctx, err := d.comp.ActiveContext()
	if err != nil {
		d.logger.Debug("active context lookup failed", "error", err)
		return
	}
	if err := d.eng.BeginDrag(win); err != nil {
		if errors.Is(err, drag.ErrSessionConflict) {
			d.logger.Debug("drag session already running", "screen", ctx.ScreenID)
		} else {
			d.logger.Debug("failed to open drag session", "window", win, "error", err)
		}
		return
	}
	d.dragging = true
	d.dragScreen = ctx.ScreenID
	d.logger.Debug("drag session opened", "window", win, "screen", ctx.ScreenID)
}

func (d *Daemon) endDrag() {
	screen := d.dragScreen
	d.dragging = false
	d.dragScreen = ""

	commit, ok, err := d.eng.EndDrag(screen)
	if err != nil {
		d.logger.Warn("drag commit failed", "screen", screen, "error", err)
		return
	}
	if ok {
		d.logger.Info("window snapped",
			"window", commit.WindowID,
			"zones", commit.ZoneIDs,
			"screen", screen)
		// Raise the snapped window so it ends up above any windows
		// already occupying the target zone.
		if err := d.comp.Focus(commit.WindowID); err != nil {
			d.logger.Debug("focus after snap failed", "window", commit.WindowID, "error", err)
		}
	} else {
		d.logger.Debug("drag cancelled", "screen", screen)
	}
}

// applyReload re-reads the config file and pushes it into the engine.
func (d *Daemon) applyReload() {
	var (
		cfg *config.Config
		err error
	)
	if d.configPath != "" {
		cfg, err = config.LoadFromPath(d.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		d.logger.Error("config reload failed", "path", d.configPath, "error", err)
		return
	}
	if err := ApplyConfig(d.eng, cfg, d.events); err != nil {
		d.logger.Error("config apply failed", "error", err)
		return
	}
	d.logger.Info("config reloaded", "path", d.configPath)
}

// EngineOptions maps config knobs onto engine tuning options.
func EngineOptions(cfg *config.Config) engine.Options {
	policy := drag.PolicySmallestArea
	if cfg.OverlapPolicy == config.OverlapTopmost {
		policy = drag.PolicyTopmost
	}
	return engine.Options{
		TriggerDistance: float64(cfg.GetTriggerDistance()),
		EdgeMargin:      cfg.GetEdgeMargin(),
		OverlapPolicy:   policy,
		Padding:         cfg.GetPadding(),
		ShowNumbers:     cfg.GetShowNumbers(),
	}
}

// ApplyConfig pushes layouts, bindings and tuning knobs from a loaded
// config into a running engine. Used at startup and on reload. Authored
// layouts replace same-id layouts already in the store; layouts created
// over IPC are left alone.
func ApplyConfig(eng *engine.Engine, cfg *config.Config, events drag.Events) error {
	for _, l := range cfg.AllLayouts() {
		if err := eng.PutLayout(l); err != nil {
			return fmt.Errorf("layout %q: %w", l.ID, err)
		}
	}
	if err := eng.SetFallbackLayout(cfg.DefaultLayout); err != nil {
		return err
	}
	for screen, layoutID := range cfg.ScreenDefaults {
		if err := eng.SetScreenDefault(screen, layoutID); err != nil {
			return err
		}
	}
	for _, b := range cfg.Bindings {
		if err := eng.BindContext(b); err != nil {
			return err
		}
	}
	eng.SetOptions(EngineOptions(cfg), events)
	return nil
}
