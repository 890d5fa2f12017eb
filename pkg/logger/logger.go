package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a thin structured wrapper over zerolog.
type Logger struct {
	zl zerolog.Logger
}

type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	Output     string // stdout, stderr, or file path
	TimeFormat string
}

func New(cfg *Config) (*Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	var output io.Writer
	switch cfg.Output {
	case "stdout", "":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("could not open log file: %w", err)
		}
		output = file
	}

	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339Nano
	}
	zerolog.TimeFieldFormat = cfg.TimeFormat

	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: cfg.TimeFormat,
		}
	}

	zl := zerolog.New(output).
		With().
		Timestamp().
		CallerWithSkipFrameCount(3).
		Logger()

	return &Logger{zl: zl}, nil
}

func (l *Logger) Debug(msg string, fields ...Field) { l.log(l.zl.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(l.zl.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(l.zl.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.log(l.zl.Error(), msg, fields) }

func (l *Logger) log(event *zerolog.Event, msg string, fields []Field) {
	for _, f := range fields {
		f.AddTo(event)
	}
	event.Msg(msg)
}

// Field adds one typed key/value pair to a log event.
type Field interface {
	AddTo(event *zerolog.Event)
}

type StringField struct {
	Key   string
	Value string
}

func (f StringField) AddTo(event *zerolog.Event) { event.Str(f.Key, f.Value) }

type IntField struct {
	Key   string
	Value int
}

func (f IntField) AddTo(event *zerolog.Event) { event.Int(f.Key, f.Value) }

type Int64Field struct {
	Key   string
	Value int64
}

func (f Int64Field) AddTo(event *zerolog.Event) { event.Int64(f.Key, f.Value) }

type Float64Field struct {
	Key   string
	Value float64
}

func (f Float64Field) AddTo(event *zerolog.Event) { event.Float64(f.Key, f.Value) }

type BoolField struct {
	Key   string
	Value bool
}

func (f BoolField) AddTo(event *zerolog.Event) { event.Bool(f.Key, f.Value) }

type ErrorField struct {
	Value error
}

func (f ErrorField) AddTo(event *zerolog.Event) { event.Err(f.Value) }

type AnyField struct {
	Key   string
	Value interface{}
}

func (f AnyField) AddTo(event *zerolog.Event) { event.Interface(f.Key, f.Value) }

// --- Field constructors ---

func String(key, value string) Field { return StringField{Key: key, Value: value} }

func Int(key string, value int) Field { return IntField{Key: key, Value: value} }

func Int64(key string, value int64) Field { return Int64Field{Key: key, Value: value} }

func Float64(key string, value float64) Field { return Float64Field{Key: key, Value: value} }

func Bool(key string, value bool) Field { return BoolField{Key: key, Value: value} }

func Error(err error) Field { return ErrorField{Value: err} }

func Any(key string, value interface{}) Field { return AnyField{Key: key, Value: value} }

func Duration(key string, value time.Duration) Field {
	return Int64Field{Key: key, Value: value.Milliseconds()}
}

func Strings(key string, value []string) Field {
	return String(key, strings.Join(value, ", "))
}
