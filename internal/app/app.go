package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"systemdwake/internal/storage"
	"systemdwake/internal/waketime"
	logx "systemdwake/pkg/logx"
	"systemdwake/pkg/wake"
)

// Options are the command-line overrides applied on top of the config file.
type Options struct {
	ConfigPath string
	// Scope overrides systemd.scope when non-empty.
	Scope    string
	LogLevel string
	// Invoker replaces process spawning (tests).
	Invoker wake.Invoker
}

// App wires config, logging, the scheduler and the optional audit store for
// one wakectl invocation.
type App struct {
	cfgm *ConfigManager
	cfg  *Config

	log  logx.Logger
	logs *logx.Service

	sched     *wake.Scheduler
	canceller *wake.DBusCanceller
	store     storage.Store
	loc       *time.Location
}

func NewApp(ctx context.Context, opts Options) (*App, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}
	cfgm := NewOptionalConfigManager(expandHome(path))
	cfgm.SetLogger(logx.NewConsole(opts.LogLevel))
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	if s := strings.TrimSpace(opts.Scope); s != "" {
		cfg.Systemd.Scope = s
	}

	logSvc, log := logx.New(mapLoggingConfig(cfg, opts.LogLevel))
	log = log.With(logx.String("comp", "wakectl"))

	loc, err := cfg.Location()
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}

	a := &App{cfgm: cfgm, cfg: cfg, log: log, logs: logSvc, loc: loc}

	scope := mapScope(cfg.Systemd.Scope)
	var canceller wake.Canceller
	if strings.EqualFold(cfg.Systemd.Backend, "dbus") {
		c, err := wake.NewDBusCanceller(ctx, scope)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.canceller = c
		canceller = c
	}

	a.sched = wake.New(wake.Config{
		Scope:       scope,
		RunTool:     cfg.Systemd.RunTool,
		StopTool:    cfg.Systemd.StopTool,
		Launcher:    cfg.Systemd.Launcher,
		Description: cfg.Systemd.Description,
		Invoker:     opts.Invoker,
		Canceller:   canceller,
		Log:         log.With(logx.String("comp", "wake")),
	})

	baseDir := ""
	if p := cfgm.Path(); p != "" {
		baseDir = filepath.Dir(p)
	}
	if sc, enabled, err := mapStorageConfig(cfg, baseDir); err != nil {
		_ = a.Close()
		return nil, err
	} else if enabled {
		st, err := storage.Open(sc, log.With(logx.String("comp", "storage")))
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.store = st
		log.Debug("audit storage enabled", logx.String("driver", sc.Driver))
	}

	return a, nil
}

func (a *App) Config() *Config            { return a.cfg }
func (a *App) Logger() logx.Logger        { return a.log }
func (a *App) Scheduler() *wake.Scheduler { return a.sched }
func (a *App) Location() *time.Location   { return a.loc }

// ParseWake resolves a wake expression against now in the configured zone.
func (a *App) ParseWake(raw string, now time.Time) (waketime.Spec, error) {
	return waketime.Parse(raw, now, a.loc)
}

// RegisterRequest is one wakectl register call.
type RegisterRequest struct {
	Name    wake.TimerName
	At      time.Time
	Command wake.Command
}

// Register schedules the job and records the attempt in the audit store.
// The scheduler's error is returned unchanged.
func (a *App) Register(ctx context.Context, req RegisterRequest) error {
	start := time.Now()
	err := a.sched.Register(ctx, req.At, req.Name, req.Command)
	a.audit(ctx, storage.AuditEntry{
		At:       start,
		Action:   "register",
		Name:     req.Name.String(),
		Scope:    string(a.sched.Scope()),
		WakeAt:   req.At,
		Schedule: wake.EncodeSchedule(req.At),
		Program:  req.Command.Path,
		Args:     req.Command.Args,
		OK:       err == nil,
		Error:    errString(err),
		TookMS:   time.Since(start).Milliseconds(),
	})
	if err == nil {
		a.log.Info("timer registered",
			logx.String("name", req.Name.String()),
			logx.String("on_calendar", wake.EncodeSchedule(req.At)),
		)
	}
	return err
}

// Deregister cancels the named timer. With ignoreMissing, ErrNotFound is
// treated as already cancelled.
func (a *App) Deregister(ctx context.Context, name wake.TimerName, ignoreMissing bool) error {
	start := time.Now()
	err := a.sched.Deregister(ctx, name)
	if ignoreMissing && errors.Is(err, wake.ErrNotFound) {
		a.log.Debug("timer already gone", logx.String("name", name.String()))
		err = nil
	}
	a.audit(ctx, storage.AuditEntry{
		At:     start,
		Action: "deregister",
		Name:   name.String(),
		Scope:  string(a.sched.Scope()),
		OK:     err == nil,
		Error:  errString(err),
		TookMS: time.Since(start).Milliseconds(),
	})
	if err == nil {
		a.log.Info("timer deregistered", logx.String("name", name.String()))
	}
	return err
}

// History returns the newest audit entries. storage.ErrDisabled is returned
// when no store is configured.
func (a *App) History(ctx context.Context, limit int) ([]storage.AuditEntry, error) {
	if a.store == nil {
		return nil, storage.ErrDisabled
	}
	return a.store.RecentAudit(ctx, limit)
}

func (a *App) audit(ctx context.Context, e storage.AuditEntry) {
	if a.store == nil {
		return
	}
	if err := a.store.AppendAudit(ctx, e); err != nil {
		// The timer operation already happened; a lost history line must not fail it.
		a.log.Warn("audit append failed", logx.Err(err), logx.String("action", e.Action))
	}
}

func (a *App) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
		a.store = nil
	}
	if a.canceller != nil {
		errs = append(errs, a.canceller.Close())
		a.canceller = nil
	}
	if a.logs != nil {
		errs = append(errs, a.logs.Close())
	}
	return errors.Join(errs...)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
