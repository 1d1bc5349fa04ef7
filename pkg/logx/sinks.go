package logx

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/coreos/go-systemd/v22/journal"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/journald"
)

type Config struct {
	Level   string
	Console bool
	File    FileConfig
	// Journal sends events to journald natively, with the level mapped to a
	// syslog priority. Ignored with a warning when journald is not reachable.
	Journal bool
}

type FileConfig struct {
	Enabled bool
	Path    string
}

const defaultLogFile = "./systemd-wake.log"

// Service owns the configured sinks. Loggers obtained from it pick up the
// sinks of the latest Apply.
type Service struct {
	mu   sync.RWMutex
	cur  zerolog.Logger
	file *os.File
}

// New builds the sinks described by cfg and returns the Service with a root
// Logger bound to it.
func New(cfg Config) (*Service, Logger) {
	zerolog.ErrorFieldName = "err"
	zerolog.TimeFieldFormat = timeFormat

	s := &Service{}
	s.Apply(cfg)
	return s, s.Logger()
}

func (s *Service) Logger() Logger { return Logger{src: s} }

func (s *Service) zl() zerolog.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Apply replaces the sinks. A log file that cannot be opened is reported on
// stderr and skipped; with no sink left, console output is used.
func (s *Service) Apply(cfg Config) {
	var sinks []io.Writer
	if cfg.Console {
		sinks = append(sinks, consoleWriter(os.Stderr))
	}

	var file *os.File
	if cfg.File.Enabled {
		path := strings.TrimSpace(cfg.File.Path)
		if path == "" {
			path = defaultLogFile
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logx: open %s: %v\n", path, err)
		} else {
			file = f
			sinks = append(sinks, zerolog.SyncWriter(f))
		}
	}

	if cfg.Journal {
		if journal.Enabled() {
			sinks = append(sinks, journald.NewJournalDWriter())
		} else {
			fmt.Fprintln(os.Stderr, "logx: journald not reachable, journal sink disabled")
		}
	}

	if len(sinks) == 0 {
		sinks = append(sinks, consoleWriter(os.Stderr))
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(sinks...)).
		Level(parseLevel(cfg.Level, zerolog.InfoLevel)).
		With().Timestamp().Logger()

	s.mu.Lock()
	old := s.file
	s.cur, s.file = zl, file
	s.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
}

// Close releases the log file, if any. Loggers stay usable.
func (s *Service) Close() error {
	s.mu.Lock()
	f := s.file
	s.file = nil
	s.mu.Unlock()
	if f == nil {
		return nil
	}
	return f.Close()
}

func consoleWriter(w io.Writer) io.Writer {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000"}
	cw.FormatCaller = func(i any) string {
		s, _ := i.(string)
		return s
	}
	return cw
}

// UnderSystemd reports whether the process runs as a systemd unit with
// journald reachable (JOURNAL_STREAM is set for units whose stdio goes to the
// journal).
func UnderSystemd() bool {
	return strings.TrimSpace(os.Getenv("JOURNAL_STREAM")) != "" && journal.Enabled()
}

func parseLevel(s string, def zerolog.Level) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return def
	}
}
