package daemon

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/dockguard/dockguard/internal/barrier"
	"github.com/dockguard/dockguard/internal/config"
	"github.com/dockguard/dockguard/internal/guardian"
	"github.com/dockguard/dockguard/internal/history"
	"github.com/dockguard/dockguard/internal/hotkeys"
	"github.com/dockguard/dockguard/internal/ipc"
	"github.com/dockguard/dockguard/internal/platform"
	"github.com/dockguard/dockguard/internal/surface"
	"github.com/dockguard/dockguard/internal/tray"
)

// Options controls a daemon run.
type Options struct {
	ConfigPath string // empty = default location
	Tray       bool   // park main on the tray menu
}

// Run wires up and starts the daemon, blocking until shutdown. Must be
// called from the main goroutine when Options.Tray is set.
func Run(opts Options) error {
	var cfg *config.Config
	var err error
	if opts.ConfigPath != "" {
		cfg, err = config.LoadFromPath(opts.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log.Printf("Configuration loaded (poll: %s, settle: %s)", cfg.PollInterval(), cfg.SettleDelay())

	// A live daemon on the socket means this start is a duplicate. A
	// stale socket from a crashed run fails the ping and is removed by
	// the IPC server below.
	if err := ipc.NewClient().Ping(); err == nil {
		return errors.New("another dockguard daemon is already running")
	}

	logger := newLogger(cfg.LogLevel)

	// An explicit display target beats whatever the session handed us.
	if cfg.Display != "" {
		os.Setenv("DISPLAY", cfg.Display)
	}
	if cfg.XAuthority != "" {
		os.Setenv("XAUTHORITY", cfg.XAuthority)
	}

	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		return fmt.Errorf("failed to connect to display: %w", err)
	}
	defer backend.Disconnect()

	log.Println("dockguard daemon started successfully")

	if caps, err := backend.Capabilities(); err != nil {
		logger.Warn("EWMH capability probe failed", "error", err)
	} else if missing := caps.Missing(); len(missing) > 0 {
		logger.Warn("window manager does not advertise required atoms", "missing", missing)
	}

	surf, err := surface.New(backend.XUtil(), backend.RootWindow())
	if err != nil {
		return fmt.Errorf("failed to create barrier surface: %w", err)
	}
	defer surf.Destroy()

	controller := NewController(backend, surf, paramsFromConfig(cfg), logger)
	if cfg.DebugHighlight {
		controller.SetHighlight(true)
	}

	// History is strictly best-effort: an unavailable store never stops
	// the daemon.
	var store *history.Store
	histCfg := cfg.GetHistory()
	if histCfg.Enabled {
		store, err = history.Open(history.Options{Path: histCfg.Path})
		if err != nil {
			logger.Warn("history store unavailable", "error", err)
			store = nil
		} else {
			defer store.Close()
			retention := time.Duration(histCfg.RetentionDays) * 24 * time.Hour
			go pruneHistory(store, retention, logger)
		}
	}

	recorder := newRecorder(store, logger)
	defer recorder.stop()
	if store != nil {
		controller.OnTopology = recorder.recordTopology
	}

	guardianCfg := guardian.Config{
		Interval:         cfg.PollInterval(),
		OverlapTolerance: cfg.OverlapTolerance,
		MinWindowHeight:  cfg.MinWindowHeight,
		ExemptClasses:    cfg.ExemptClasses,
		Logger:           logger,
	}
	if store != nil {
		guardianCfg.OnCorrection = recorder.recordCorrection
	}
	guard := guardian.New(guardianCfg, backend, controller)

	state := &daemonState{
		controller: controller,
		guardian:   guard,
		store:      store,
		instanceID: uuid.NewString(),
	}

	scheduler := barrier.NewScheduler(cfg.SettleDelay(), controller.HideSurface, controller.Recompute)
	defer scheduler.Stop()
	if err := backend.SubscribeDisplayChanges(scheduler.Signal); err != nil {
		logger.Warn("display change subscription failed, topology changes need manual recompute", "error", err)
	}

	reloadChan := make(chan struct{}, 1)
	ipcServer, err := ipc.NewServer(cfg, state, backend, reloadChan)
	if err != nil {
		return fmt.Errorf("failed to create IPC server: %w", err)
	}
	if err := ipcServer.Start(); err != nil {
		return fmt.Errorf("failed to start IPC server: %w", err)
	}
	defer ipcServer.Stop()

	hotkeyHandler := hotkeys.NewHandler(backend, state)
	if err := hotkeyHandler.RegisterPauseToggle(cfg.PauseHotkey); err != nil {
		log.Printf("Warning: Failed to register pause hotkey: %v", err)
	} else if cfg.PauseHotkey != "" {
		log.Printf("Pause hotkey registered: %s", cfg.PauseHotkey)
	}
	if err := hotkeyHandler.RegisterHighlightToggle(cfg.HighlightHotkey); err != nil {
		log.Printf("Warning: Failed to register highlight hotkey: %v", err)
	} else if cfg.HighlightHotkey != "" {
		log.Printf("Highlight hotkey registered: %s", cfg.HighlightHotkey)
	}

	guardianCtx, guardianCancel := context.WithCancel(context.Background())
	defer guardianCancel()
	go guard.Run(guardianCtx)

	shutdown := func() {
		log.Println("Shutting down dockguard daemon...")
		guardianCancel()
		scheduler.Stop()
		ipcServer.Stop()
		recorder.stop()
		if store != nil {
			store.Close()
		}
		os.Exit(0)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		for {
			select {
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGHUP:
					log.Println("Received SIGHUP, reloading config...")
					newCfg, err := config.Load()
					if err != nil {
						log.Printf("Config reload failed: %v", err)
						continue
					}
					ipcServer.UpdateConfig(newCfg)
					applyConfig(newCfg, controller, guard)
					log.Println("Config reloaded successfully")

				case os.Interrupt, syscall.SIGTERM:
					shutdown()
				}

			case <-reloadChan:
				// Config was reloaded via IPC, update components
				applyConfig(ipcServer.GetConfig(), controller, guard)
			}
		}
	}()

	controller.Recompute()

	log.Println("Entering event loop...")
	if opts.Tray {
		go backend.EventLoop()
		tray.Run(state, shutdown)
		return nil
	}
	backend.EventLoop()
	return nil
}

// applyConfig pushes reloaded settings into the running components and
// recomputes under the new parameters.
func applyConfig(cfg *config.Config, controller *Controller, guard *guardian.Guardian) {
	controller.UpdateParams(paramsFromConfig(cfg))
	guard.UpdateConfig(guardian.Config{
		OverlapTolerance: cfg.OverlapTolerance,
		MinWindowHeight:  cfg.MinWindowHeight,
		ExemptClasses:    cfg.ExemptClasses,
	})
	controller.SetHighlight(cfg.DebugHighlight)
	controller.Recompute()
}

func paramsFromConfig(cfg *config.Config) barrier.Params {
	return barrier.Params{
		ActivationThreshold: float64(cfg.ActivationThreshold),
		DefaultHeight:       float64(cfg.BarrierHeight),
		PreferredSecondary:  cfg.SecondaryDisplay,
	}
}

func pruneHistory(store *history.Store, retention time.Duration, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := store.Prune(ctx, retention)
	if err != nil {
		logger.Warn("history prune failed", "error", err)
		return
	}
	if removed > 0 {
		logger.Info("history pruned", "rows", removed)
	}
}

func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(level),
	}))
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// daemonState is the control surface shared by IPC, hotkeys and the
// tray. All mutation goes through the controller and guardian, which
// do their own locking.
type daemonState struct {
	controller *Controller
	guardian   *guardian.Guardian
	store      *history.Store
	instanceID string
}

var (
	_ ipc.DaemonState = (*daemonState)(nil)
	_ hotkeys.Actions = (*daemonState)(nil)
	_ tray.Controls   = (*daemonState)(nil)
)

func (d *daemonState) Status() ipc.StatusData {
	snap := d.controller.Snapshot()
	stats := d.guardian.Stats()

	status := ipc.StatusData{
		InstanceID:     d.instanceID,
		BarrierActive:  snap.Active,
		BarrierVisible: snap.Visible,
		Barrier: ipc.RectInfo{
			X:      snap.Frame.X,
			Y:      snap.Frame.Y,
			Width:  snap.Frame.Width,
			Height: snap.Frame.Height,
		},
		Highlight:    snap.Highlight,
		Paused:       stats.Paused,
		DisplayCount: snap.Displays,
		Ticks:        stats.Ticks,
		Corrections:  stats.Corrections,
	}
	if !stats.LastCorrection.IsZero() {
		status.LastCorrection = stats.LastCorrection.Format(time.RFC3339)
	}
	return status
}

func (d *daemonState) Recompute() {
	d.controller.Recompute()
}

func (d *daemonState) SetPaused(paused bool) {
	d.guardian.SetPaused(paused)
}

func (d *daemonState) Paused() bool {
	return d.guardian.Paused()
}

func (d *daemonState) SetHighlight(enabled bool) {
	d.controller.SetHighlight(enabled)
}

func (d *daemonState) Highlight() bool {
	return d.controller.Highlight()
}

func (d *daemonState) TogglePaused() {
	d.guardian.SetPaused(!d.guardian.Paused())
}

func (d *daemonState) ToggleHighlight() {
	d.controller.SetHighlight(!d.controller.Highlight())
}

func (d *daemonState) History(limit int) ([]ipc.CorrectionRecord, error) {
	if d.store == nil {
		return nil, errors.New("history is disabled in the configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	recs, err := d.store.RecentCorrections(ctx, limit)
	if err != nil {
		return nil, err
	}

	out := make([]ipc.CorrectionRecord, len(recs))
	for i, rec := range recs {
		out[i] = ipc.CorrectionRecord{
			At:        rec.At,
			WindowID:  rec.WindowID,
			Class:     rec.Class,
			Title:     rec.Title,
			Overlap:   rec.Overlap,
			OldHeight: rec.OldHeight,
			NewHeight: rec.NewHeight,
		}
	}
	return out, nil
}

// recorder hands guardian and controller events to the history store
// off the hot path. Events are dropped rather than ever blocking a
// tick on a database write.
type recorder struct {
	store  *history.Store
	logger *slog.Logger
	corrCh chan guardian.Correction
	topoCh chan history.TopologyEvent
	done   chan struct{}
	once   sync.Once
}

func newRecorder(store *history.Store, logger *slog.Logger) *recorder {
	r := &recorder{
		store:  store,
		logger: logger,
		corrCh: make(chan guardian.Correction, 16),
		topoCh: make(chan history.TopologyEvent, 4),
		done:   make(chan struct{}),
	}
	if store != nil {
		go r.loop()
	}
	return r
}

func (r *recorder) loop() {
	for {
		select {
		case c := <-r.corrCh:
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := r.store.RecordCorrection(ctx, history.Correction{
				At:        c.At,
				WindowID:  uint32(c.Window),
				Class:     c.Class,
				Title:     c.Title,
				Overlap:   c.Overlap,
				OldHeight: c.OldHeight,
				NewHeight: c.NewHeight,
			})
			cancel()
			if err != nil {
				r.logger.Warn("history write failed", "error", err)
			}

		case ev := <-r.topoCh:
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := r.store.RecordTopology(ctx, ev)
			cancel()
			if err != nil {
				r.logger.Warn("history write failed", "error", err)
			}

		case <-r.done:
			return
		}
	}
}

func (r *recorder) recordCorrection(c guardian.Correction) {
	select {
	case r.corrCh <- c:
	default:
	}
}

func (r *recorder) recordTopology(displays int, b barrier.Barrier) {
	frame := rectFromBarrier(b.Rect)
	ev := history.TopologyEvent{
		At:       time.Now(),
		Displays: displays,
		Active:   b.Active,
		X:        frame.X,
		Y:        frame.Y,
		Width:    frame.Width,
		Height:   frame.Height,
	}

	select {
	case r.topoCh <- ev:
	default:
	}
}

func (r *recorder) stop() {
	r.once.Do(func() { close(r.done) })
}
