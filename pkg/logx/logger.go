package logx

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/rs/zerolog"
)

type Level = zerolog.Level

const (
	LevelTrace = zerolog.TraceLevel
	LevelDebug = zerolog.DebugLevel
	LevelInfo  = zerolog.InfoLevel
	LevelWarn  = zerolog.WarnLevel
	LevelError = zerolog.ErrorLevel
)

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// source yields the zerolog logger events are written to. A Service is a
// live source: loggers derived from it follow its Apply calls.
type source interface {
	zl() zerolog.Logger
}

type fixed struct{ l zerolog.Logger }

func (f fixed) zl() zerolog.Logger { return f.l }

// Logger is the structured logger passed around the repo. It is a small value
// type; With returns a copy. The zero Logger discards everything.
type Logger struct {
	src    source
	fields []Field
}

func Nop() Logger { return Logger{src: fixed{zerolog.Nop()}} }

// NewConsole writes human-readable lines to stderr. It is meant for the
// moments before the config file has been read.
func NewConsole(level string) Logger {
	return Logger{src: fixed{build(consoleWriter(os.Stderr), level)}}
}

// NewWriter writes JSON lines to w.
func NewWriter(w io.Writer, level string) Logger {
	return Logger{src: fixed{build(w, level)}}
}

func build(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(parseLevel(level, zerolog.InfoLevel)).With().Timestamp().Logger()
}

func (l Logger) IsZero() bool { return l.src == nil && len(l.fields) == 0 }

func (l Logger) root() zerolog.Logger {
	if l.src == nil {
		return zerolog.Nop()
	}
	return l.src.zl()
}

// Enabled reports whether an event at level would be written.
func (l Logger) Enabled(level Level) bool {
	zl := l.root()
	return zl.GetLevel() != zerolog.Disabled && level >= zl.GetLevel()
}

func (l Logger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	out := l
	out.fields = make([]Field, 0, len(l.fields)+len(fields))
	out.fields = append(append(out.fields, l.fields...), fields...)
	return out
}

func (l Logger) Trace(msg string, fields ...Field) { l.emit(zerolog.TraceLevel, msg, fields) }
func (l Logger) Debug(msg string, fields ...Field) { l.emit(zerolog.DebugLevel, msg, fields) }
func (l Logger) Info(msg string, fields ...Field)  { l.emit(zerolog.InfoLevel, msg, fields) }
func (l Logger) Warn(msg string, fields ...Field)  { l.emit(zerolog.WarnLevel, msg, fields) }
func (l Logger) Error(msg string, fields ...Field) { l.emit(zerolog.ErrorLevel, msg, fields) }

// emit must be called directly from the level methods: the caller lookup
// skips exactly emit and the level method.
func (l Logger) emit(level zerolog.Level, msg string, fields []Field) {
	zl := l.root()
	e := zl.WithLevel(level)
	if e == nil {
		return
	}
	if _, file, line, ok := runtime.Caller(2); ok {
		e.Str(zerolog.CallerFieldName, filepath.Base(file)+":"+strconv.Itoa(line))
	}
	for _, f := range l.fields {
		if f != nil {
			f(e)
		}
	}
	for _, f := range fields {
		if f != nil {
			f(e)
		}
	}
	e.Msg(msg)
}
