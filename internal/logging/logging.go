package logging

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

type Field struct {
	Key   string
	Value any
}

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
	Enabled(level Level) bool
}

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

type zeroLogger struct {
	base  zerolog.Logger
	level Level
}

// New writes logfmt-like text lines to out.
func New(out io.Writer, level Level) Logger {
	return NewWithFormat(out, level, FormatText)
}

func NewWithFormat(out io.Writer, level Level, format Format) Logger {
	if out == nil {
		out = os.Stdout
	}
	var w io.Writer = out
	if format != FormatJSON {
		w = zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    true,
			TimeFormat: time.RFC3339Nano,
		}
	}
	base := zerolog.New(w).Level(toZerolog(level)).With().Timestamp().Logger()
	return &zeroLogger{base: base, level: level}
}

func Nop() Logger {
	return &zeroLogger{base: zerolog.Nop(), level: Error + 1}
}

func (l *zeroLogger) Enabled(level Level) bool {
	if l == nil {
		return false
	}
	return level >= l.level
}

func (l *zeroLogger) With(fields ...Field) Logger {
	if l == nil {
		return Nop()
	}
	ctx := l.base.With()
	for _, field := range fields {
		ctx = ctx.Interface(field.Key, normalizeValue(field.Value))
	}
	return &zeroLogger{base: ctx.Logger(), level: l.level}
}

func (l *zeroLogger) Debug(msg string, fields ...Field) { l.log(Debug, msg, fields...) }
func (l *zeroLogger) Info(msg string, fields ...Field)  { l.log(Info, msg, fields...) }
func (l *zeroLogger) Warn(msg string, fields ...Field)  { l.log(Warn, msg, fields...) }
func (l *zeroLogger) Error(msg string, fields ...Field) { l.log(Error, msg, fields...) }

func (l *zeroLogger) log(level Level, msg string, fields ...Field) {
	if l == nil || level < l.level {
		return
	}
	var event *zerolog.Event
	switch level {
	case Debug:
		event = l.base.Debug()
	case Warn:
		event = l.base.Warn()
	case Error:
		event = l.base.Error()
	default:
		event = l.base.Info()
	}
	if event == nil {
		return
	}
	for _, field := range fields {
		event = event.Interface(field.Key, normalizeValue(field.Value))
	}
	event.Msg(msg)
}

// normalizeValue keeps errors and durations readable in JSON output.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case error:
		if v == nil {
			return nil
		}
		return v.Error()
	case time.Duration:
		return v.String()
	case []byte:
		return string(v)
	default:
		return v
	}
}

func toZerolog(level Level) zerolog.Level {
	switch level {
	case Debug:
		return zerolog.DebugLevel
	case Warn:
		return zerolog.WarnLevel
	case Error:
		return zerolog.ErrorLevel
	case Info:
		return zerolog.InfoLevel
	default:
		return zerolog.Disabled
	}
}

func levelString(level Level) string {
	switch level {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

func (l Level) String() string {
	return levelString(l)
}

func ParseLevel(raw string) Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return Debug
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

func ParseFormat(raw string) Format {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "json":
		return FormatJSON
	default:
		return FormatText
	}
}

func NewRequestID() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(buf[:])
}

func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}
